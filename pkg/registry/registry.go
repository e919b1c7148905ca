// Package registry holds the in-memory set of installed packages known to
// gitpkg, keyed by source URL.
//
// The registry is not authoritative: the backend is. A successful list
// replaces the registry wholesale, and add results are merged in with a
// first-registered-wins policy so that at most one record exists per URL.
package registry

import (
	"errors"
	"strings"
)

// DefaultBuiltinPrefix is the package-name prefix of host built-in packages.
// Built-in packages are never tracked.
const DefaultBuiltinPrefix = "com.unity."

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("package not found")

// Record is one installed package as known to gitpkg.
type Record struct {
	Name        string // Stable package name (e.g. "com.example.tools")
	URL         string // Git URL the package was installed from
	DisplayName string
	Author      string
	Version     string
}

// Info is backend-reported package information.
type Info struct {
	PackageID   string // Composite id "name@url"
	DisplayName string
	Author      string
	Version     string
}

// SplitPackageID splits a composite "name@url" id at the first '@'.
// URLs may themselves contain '@' (git@host:repo), so only the first one
// separates the name.
func SplitPackageID(id string) (name, url string) {
	name, url, _ = strings.Cut(id, "@")
	return name, url
}

// Registry is an ordered collection of records, unique by URL.
// It is not safe for concurrent use.
type Registry struct {
	builtinPrefix string
	records       []Record
}

// New creates an empty registry. Packages whose name starts with
// builtinPrefix are skipped by Upsert; an empty prefix disables the filter.
func New(builtinPrefix string) *Registry {
	return &Registry{builtinPrefix: builtinPrefix}
}

// IsBuiltin reports whether name belongs to the host's built-in namespace.
func (r *Registry) IsBuiltin(name string) bool {
	return r.builtinPrefix != "" && strings.HasPrefix(name, r.builtinPrefix)
}

// Upsert builds a record from backend info and adds it unless a record with
// the same URL already exists (first registered wins). Built-in packages are
// skipped entirely: skipped is true and rec is the zero value.
func (r *Registry) Upsert(info Info) (rec Record, added bool, skipped bool) {
	name, url := SplitPackageID(info.PackageID)
	if r.IsBuiltin(name) {
		return Record{}, false, true
	}

	rec = Record{
		Name:        name,
		URL:         url,
		DisplayName: info.DisplayName,
		Author:      info.Author,
		Version:     info.Version,
	}
	if _, exists := r.FindByURL(url); exists {
		return rec, false, false
	}
	r.records = append(r.records, rec)
	return rec, true, false
}

// FindByURL returns the record installed from url.
func (r *Registry) FindByURL(url string) (Record, bool) {
	for _, rec := range r.records {
		if rec.URL == url {
			return rec, true
		}
	}
	return Record{}, false
}

// FindByName returns the first record with the given package name.
func (r *Registry) FindByName(name string) (Record, bool) {
	for _, rec := range r.records {
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// Remove deletes the record with rec's URL.
func (r *Registry) Remove(rec Record) error {
	for i, existing := range r.records {
		if existing.URL == rec.URL {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Clear removes all records.
func (r *Registry) Clear() {
	r.records = nil
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns a copy of all records in registration order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
