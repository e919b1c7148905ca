// Package backend defines the contract between the orchestrator and a
// package-manager backend.
//
// Every backend operation is asynchronous: List, Add and Remove return a
// [Handle] immediately and the caller polls [Handle.IsCompleted] until the
// operation finishes. Handles never block the poller, which lets the
// orchestrator run entirely inside a periodic tick.
//
// Two implementations ship with gitpkg:
//   - git.Backend (package backend/git): installs packages by cloning git URLs into a directory
//   - [Memory]: a scriptable in-memory backend for tests
package backend

import "context"

// Op identifies a backend operation.
type Op string

const (
	OpList   Op = "list"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Status is the completion status of a handle.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "pending"
	}
}

// Backend issues package operations. Implementations must return promptly;
// the work happens behind the returned Handle.
type Backend interface {
	// List reports every installed package.
	List(ctx context.Context) Handle
	// Add installs (or reinstalls) the package at url and reports it.
	Add(ctx context.Context, url string) Handle
	// Remove uninstalls the package with the given name.
	Remove(ctx context.Context, name string) Handle
}

// Handle is a pollable, in-flight backend operation.
type Handle interface {
	// ID uniquely identifies the operation for logging.
	ID() string
	// IsCompleted reports whether the operation has finished.
	IsCompleted() bool
	// Status is StatusPending until IsCompleted returns true.
	Status() Status
	// Result holds the reported packages on success: every installed
	// package for List, exactly one for Add, none for Remove.
	Result() []PackageInfo
	// Err is the failure cause when Status is StatusFailure. Backends
	// report *errors.Error values carrying a code and message.
	Err() error
}

// PackageInfo is what a backend reports about an installed package.
type PackageInfo struct {
	PackageID    string // Composite id "name@url"
	DisplayName  string
	Author       string // Optional
	Version      string
	ManifestPath string // Path to the package manifest; may not exist
}
