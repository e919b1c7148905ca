// Package pkg holds the gitpkg libraries.
//
// # Overview
//
// gitpkg installs packages from git URLs into a packages directory and
// follows the git dependencies declared in each package manifest. The
// libraries split into:
//
//  1. [manifest] - extracting git dependencies and failed URLs from text
//  2. [registry] - the in-memory list of installed packages
//  3. [queue] - the FIFO of URLs waiting to be installed
//  4. [orchestrator] - the tick-driven, single-flight request state machine
//  5. [backend] - the asynchronous backend contract, with a git
//     implementation in backend/git and an in-memory one for tests
//  6. [config], [errors], [observability], [buildinfo] - supporting code
//
// # Data Flow
//
//	URL entered / reinstall requested
//	         ↓
//	    [queue] (FIFO of pending URLs)
//	         ↓
//	    [orchestrator] Tick (one backend operation at a time)
//	         ↓
//	    [backend] Add → manifest → more URLs queued
//	         ↓
//	    [backend] List → [registry]
//
// # Quick Start
//
//	b, err := git.New(dir, git.Options{Depth: 1})
//	if err != nil {
//	    return err
//	}
//	o := orchestrator.New(b, registry.New(registry.DefaultBuiltinPrefix), orchestrator.Options{})
//	o.Enqueue(ctx, "https://github.com/example/tools.git")
//	if err := o.Run(ctx, 50*time.Millisecond); err != nil {
//	    return err
//	}
package pkg
