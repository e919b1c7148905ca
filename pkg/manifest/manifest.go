package manifest

import (
	"errors"
	"os"
	"regexp"
	"strings"

	pkgerrors "github.com/matzehuels/gitpkg/pkg/errors"
)

// DependencyKey is the manifest field holding git dependencies.
const DependencyKey = "gitdependencies"

var (
	// Lazy on both sides: the first '{' after the key and the first '}' after it.
	dependencyBlockPattern = regexp.MustCompile(`"` + DependencyKey + `":[\s\S]*?\{([\s\S]*?)\}`)
	// Greedy: text between the first '[' and the last ']'.
	bracketPattern = regexp.MustCompile(`\[(.*)\]`)
)

// Dependency is one "name": "url" pair from a dependency block.
type Dependency struct {
	Name string
	URL  string
}

// ExtractDependencyBlock returns the body of the gitdependencies object in
// text, or "" if the key is absent or not followed by an object literal.
func ExtractDependencyBlock(text string) string {
	m := dependencyBlockPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ParseDependencyEntries splits a dependency block into name/url pairs.
//
// Segments that do not split into exactly a name and a URL are skipped. Each
// skipped segment is reported in the returned error, which is non-fatal: the
// returned dependencies are valid even when err != nil. Empty segments, such
// as the one produced by a trailing comma, are ignored silently.
func ParseDependencyEntries(block string) ([]Dependency, error) {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil, nil
	}

	var (
		deps      []Dependency
		anomalies []error
	)
	for _, segment := range strings.Split(block, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		// "name":"url" -> name;url
		parts := strings.Split(strings.ReplaceAll(strings.ReplaceAll(segment, `":`, ";"), `"`, ""), ";")
		if len(parts) != 2 {
			anomalies = append(anomalies, pkgerrors.New(pkgerrors.ErrCodeInvalidManifest, "malformed dependency entry: %s", segment))
			continue
		}

		name, url := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if name == "" || url == "" {
			anomalies = append(anomalies, pkgerrors.New(pkgerrors.ErrCodeInvalidManifest, "incomplete dependency entry: %s", segment))
			continue
		}
		deps = append(deps, Dependency{Name: name, URL: url})
	}

	return deps, errors.Join(anomalies...)
}

// ParseDependencies extracts and parses the dependency block of a manifest.
func ParseDependencies(text string) ([]Dependency, error) {
	return ParseDependencyEntries(ExtractDependencyBlock(text))
}

// ReadDependencies reads the manifest at path and parses its dependencies.
// A missing file is not an error and yields no dependencies.
func ReadDependencies(path string) ([]Dependency, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "read manifest %s", path)
	}
	return ParseDependencies(string(data))
}

// ExtractFailedPackageURL returns the text between the first '[' and the
// last ']' of msg. ok is false if msg has no such bracket pair.
//
// This is a best-effort heuristic over foreign error text: the result is
// whatever the backend put in brackets.
func ExtractFailedPackageURL(msg string) (url string, ok bool) {
	m := bracketPattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
