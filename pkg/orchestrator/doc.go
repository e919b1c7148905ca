// Package orchestrator serializes package operations against an
// asynchronous backend.
//
// # Model
//
// An [Orchestrator] owns the package registry, the pending queue and at most
// one in-flight backend operation. It never blocks: the host calls
// [Orchestrator.Tick] periodically (once per frame, timer tick or UI
// message) and each tick performs at most one transition:
//
//  1. While the settle cooldown is positive, decrement it and stop.
//  2. If an operation is in flight, wait for it; on completion consume the
//     result, set the cooldown and clear the in-flight slot.
//  3. If the queue is non-empty, issue an Add for the front URL and mark
//     that a refresh is needed once the queue drains.
//  4. If a refresh is needed, issue a List.
//
// The front URL is only removed when its Add resolves: on success (the
// package was installed) or on a failure whose message names the URL in
// square brackets. Failures that name nothing are retried, up to
// [Options.MaxAddAttempts].
//
// Successful adds read the installed package's manifest and enqueue its git
// dependencies, so installing one package can cascade into several adds.
//
// # Usage
//
//	o := orchestrator.New(gitBackend, nil, orchestrator.Options{Logger: logger})
//	o.Enqueue(ctx, "https://github.com/example/tools.git")
//	if err := o.Run(ctx, 50*time.Millisecond); err != nil {
//	    return err
//	}
//	for _, rec := range o.Records() {
//	    fmt.Println(rec.Name, rec.Version)
//	}
//
// # Concurrency
//
// All state is mutated from Tick and the user-action methods. The
// orchestrator is not safe for concurrent use; hosts must not call it from
// more than one goroutine at a time.
package orchestrator
