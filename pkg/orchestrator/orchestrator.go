package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitpkg/pkg/backend"
	"github.com/matzehuels/gitpkg/pkg/errors"
	"github.com/matzehuels/gitpkg/pkg/manifest"
	"github.com/matzehuels/gitpkg/pkg/observability"
	"github.com/matzehuels/gitpkg/pkg/queue"
	"github.com/matzehuels/gitpkg/pkg/registry"
)

const (
	DefaultSettleTicks    = 10 // Ticks to wait after each completed operation
	DefaultMaxAddAttempts = 3  // Failed adds of one URL before it is dropped
)

// ErrBusy is returned by actions that need the backend while an operation
// is in flight.
var ErrBusy = errors.New(errors.ErrCodeBusy, "another package operation is in progress")

// Progress shows and clears a progress indicator while a list is running.
type Progress interface {
	Start(message string)
	Clear()
}

type noopProgress struct{}

func (noopProgress) Start(string) {}
func (noopProgress) Clear()       {}

// Options configures an Orchestrator.
type Options struct {
	SettleTicks    int         // Cooldown after each completed operation (default: 10)
	MaxAddAttempts int         // Retry cap per URL (default: 3, negative: unlimited)
	Logger         *log.Logger // Defaults to log.Default()
	Progress       Progress    // List progress indicator (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.SettleTicks <= 0 {
		opts.SettleTicks = DefaultSettleTicks
	}
	if opts.MaxAddAttempts == 0 {
		opts.MaxAddAttempts = DefaultMaxAddAttempts
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Progress == nil {
		opts.Progress = noopProgress{}
	}
	return opts
}

// operation is the single outstanding backend call.
type operation struct {
	op      backend.Op
	target  string // URL for add, package name for remove
	handle  backend.Handle
	started time.Time
}

// Orchestrator drives backend operations one at a time from a periodic tick.
type Orchestrator struct {
	backend  backend.Backend
	registry *registry.Registry
	queue    *queue.Queue
	opts     Options
	logger   *log.Logger

	inFlight     *operation
	cooldown     int
	needsRefresh bool
	attempts     map[string]int      // failed adds per URL still queued
	resolved     map[string]struct{} // URLs added during the current drain
}

// New creates an orchestrator over b. A nil reg creates a registry that
// skips the default built-in namespace.
func New(b backend.Backend, reg *registry.Registry, opts Options) *Orchestrator {
	if reg == nil {
		reg = registry.New(registry.DefaultBuiltinPrefix)
	}
	opts = opts.WithDefaults()
	return &Orchestrator{
		backend:  b,
		registry: reg,
		queue:    queue.New(),
		opts:     opts,
		logger:   opts.Logger,
		attempts: make(map[string]int),
		resolved: make(map[string]struct{}),
	}
}

// =============================================================================
// Tick
// =============================================================================

// Tick performs at most one state transition. It never blocks.
func (o *Orchestrator) Tick(ctx context.Context) {
	if o.cooldown > 0 {
		o.cooldown--
		return
	}

	if op := o.inFlight; op != nil {
		if !op.handle.IsCompleted() {
			return
		}
		o.complete(ctx, op)
		o.cooldown = o.opts.SettleTicks
		o.inFlight = nil
		return
	}

	if url, ok := o.queue.Front(); ok {
		o.issueAdd(ctx, url)
		o.cooldown = o.opts.SettleTicks
		o.needsRefresh = true
		return
	}

	if o.needsRefresh {
		o.issueList(ctx)
	}
}

func (o *Orchestrator) complete(ctx context.Context, op *operation) {
	h := op.handle
	observability.Orchestrator().OnOperationComplete(ctx, string(op.op), op.target, time.Since(op.started), h.Err())

	switch op.op {
	case backend.OpRemove:
		o.completeRemove(op)
	case backend.OpAdd:
		o.completeAdd(ctx, op)
	case backend.OpList:
		o.completeList(ctx, op)
	}
}

func (o *Orchestrator) completeRemove(op *operation) {
	if op.handle.Status() != backend.StatusSuccess {
		o.logFailure(op)
		return
	}
	o.logger.Info("removed package", "name", op.target)
}

func (o *Orchestrator) completeAdd(ctx context.Context, op *operation) {
	h := op.handle
	if h.Status() == backend.StatusSuccess {
		removedTarget := false
		for _, info := range h.Result() {
			if url, removed := o.register(ctx, info); removed && url == op.target {
				removedTarget = true
			}
		}
		// The backend may report a normalized URL; the requested entry
		// still resolves.
		if !removedTarget {
			o.queue.Remove(op.target)
		}
		delete(o.attempts, op.target)
		o.resolved[op.target] = struct{}{}
		if o.queue.IsEmpty() {
			clear(o.resolved)
		}
		o.reportQueue(ctx)
		o.reportRegistry(ctx)
		return
	}

	o.logFailure(op)

	if url, ok := manifest.ExtractFailedPackageURL(errors.UserMessage(h.Err())); ok && url != "" {
		if o.queue.Remove(url) {
			delete(o.attempts, url)
			o.logger.Warn("dropped failed package from queue", "url", url)
			observability.Orchestrator().OnAddAbandoned(ctx, url, "add failed")
		}
	}

	if o.queue.Contains(op.target) {
		o.attempts[op.target]++
		n := o.attempts[op.target]
		if limit := o.opts.MaxAddAttempts; limit > 0 && n >= limit {
			o.queue.RemoveAll(op.target)
			delete(o.attempts, op.target)
			o.logger.Error("giving up on package", "url", op.target, "attempts", n)
			observability.Orchestrator().OnAddAbandoned(ctx, op.target, "retry limit reached")
		} else {
			o.logger.Warn("add will be retried", "url", op.target, "attempt", n)
		}
	} else {
		delete(o.attempts, op.target)
	}
	if o.queue.IsEmpty() {
		clear(o.resolved)
	}
	o.reportQueue(ctx)
}

func (o *Orchestrator) completeList(ctx context.Context, op *operation) {
	o.opts.Progress.Clear()

	h := op.handle
	if h.Status() != backend.StatusSuccess {
		o.logFailure(op)
		return
	}

	o.registry.Clear()
	for _, info := range h.Result() {
		o.registry.Upsert(toRegistryInfo(info))
	}
	o.logger.Debug("refreshed packages", "count", o.registry.Len())
	o.reportRegistry(ctx)
}

// register records a package reported by a successful add, enqueues its
// git dependencies and removes its URL from the queue. It returns the
// package URL and whether a queue entry was removed.
func (o *Orchestrator) register(ctx context.Context, info backend.PackageInfo) (string, bool) {
	name, url := registry.SplitPackageID(info.PackageID)
	if o.registry.IsBuiltin(name) {
		return url, false
	}

	deps, err := manifest.ReadDependencies(info.ManifestPath)
	if err != nil {
		o.logger.Warn("skipped dependency entries", "package", name, "err", err)
	}
	if len(deps) > 0 {
		o.logger.Info("found dependencies", "package", name, "count", len(deps))
	}
	for _, dep := range deps {
		o.logger.Info("dependency", "package", name, "name", dep.Name, "url", dep.URL)
		if _, done := o.resolved[dep.URL]; done || o.queue.Contains(dep.URL) {
			continue
		}
		o.queue.Enqueue(dep.URL)
		observability.Orchestrator().OnDependencyDiscovered(ctx, name, dep.URL)
	}

	rec, _, _ := o.registry.Upsert(toRegistryInfo(info))
	o.resolved[rec.URL] = struct{}{}
	return rec.URL, o.queue.Remove(rec.URL)
}

func (o *Orchestrator) logFailure(op *operation) {
	err := op.handle.Err()
	if err == nil {
		return
	}
	o.logger.Error(string(op.op)+" failed",
		"op", op.handle.ID(),
		"target", op.target,
		"code", errors.GetCode(err),
		"message", errors.UserMessage(err))
}

// =============================================================================
// Issuing operations
// =============================================================================

func (o *Orchestrator) start(ctx context.Context, op backend.Op, target string, h backend.Handle) {
	o.inFlight = &operation{op: op, target: target, handle: h, started: time.Now()}
	o.logger.Debug("issued operation", "op", op, "target", target, "id", h.ID())
	observability.Orchestrator().OnOperationStart(ctx, string(op), target)
}

func (o *Orchestrator) issueAdd(ctx context.Context, url string) {
	o.start(ctx, backend.OpAdd, url, o.backend.Add(ctx, url))
}

func (o *Orchestrator) issueList(ctx context.Context) {
	o.needsRefresh = false
	clear(o.resolved)
	o.opts.Progress.Start("Fetching package info")
	o.start(ctx, backend.OpList, "", o.backend.List(ctx))
}

func (o *Orchestrator) issueRemove(ctx context.Context, name string) {
	o.start(ctx, backend.OpRemove, name, o.backend.Remove(ctx, name))
}

// =============================================================================
// User actions
// =============================================================================

// RequestRefresh lists installed packages now. If an operation is in flight
// the refresh is deferred until the orchestrator is otherwise idle.
func (o *Orchestrator) RequestRefresh(ctx context.Context) {
	if o.inFlight != nil {
		o.needsRefresh = true
		return
	}
	o.issueList(ctx)
}

// Enqueue queues url for installation. Surrounding whitespace is trimmed
// and blank input is ignored.
func (o *Orchestrator) Enqueue(ctx context.Context, url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	o.queue.Enqueue(url)
	o.reportQueue(ctx)
	return true
}

// QueueReinstallAll queues every registered package and clears the
// registry. Records reappear as their adds resolve.
func (o *Orchestrator) QueueReinstallAll(ctx context.Context) {
	for _, rec := range o.registry.Records() {
		o.queue.Enqueue(rec.URL)
	}
	o.registry.Clear()
	o.reportQueue(ctx)
	o.reportRegistry(ctx)
}

// QueueReinstall queues rec, drops it from the registry and, when nothing
// is in flight, issues its add immediately.
func (o *Orchestrator) QueueReinstall(ctx context.Context, rec registry.Record) {
	o.queue.Enqueue(rec.URL)
	o.forget(rec)
	o.reportQueue(ctx)
	o.reportRegistry(ctx)
	if o.inFlight == nil {
		o.issueAdd(ctx, rec.URL)
	}
}

// RemovePackage drops rec from the registry and uninstalls it. Removal
// failures are logged, not retried.
func (o *Orchestrator) RemovePackage(ctx context.Context, rec registry.Record) error {
	if o.inFlight != nil {
		return ErrBusy
	}
	o.forget(rec)
	delete(o.resolved, rec.URL)
	o.reportRegistry(ctx)
	o.issueRemove(ctx, rec.Name)
	return nil
}

func (o *Orchestrator) forget(rec registry.Record) {
	if err := o.registry.Remove(rec); err != nil {
		o.logger.Debug("package not registered", "name", rec.Name, "url", rec.URL)
	}
}

// =============================================================================
// Inspection
// =============================================================================

// State names what the orchestrator is doing.
type State int

const (
	StateIdle            State = iota // Nothing to do
	StateRemoving                     // Remove in flight
	StateAdding                       // Add in flight
	StateListing                      // List in flight
	StateDraining                     // Queue non-empty; next free tick issues an add
	StateAwaitingRefresh              // Queue drained; next free tick issues a list
)

func (s State) String() string {
	switch s {
	case StateRemoving:
		return "removing"
	case StateAdding:
		return "adding"
	case StateListing:
		return "listing"
	case StateDraining:
		return "draining"
	case StateAwaitingRefresh:
		return "awaiting-refresh"
	default:
		return "idle"
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	if op := o.inFlight; op != nil {
		switch op.op {
		case backend.OpRemove:
			return StateRemoving
		case backend.OpAdd:
			return StateAdding
		default:
			return StateListing
		}
	}
	if !o.queue.IsEmpty() {
		return StateDraining
	}
	if o.needsRefresh {
		return StateAwaitingRefresh
	}
	return StateIdle
}

// Busy reports whether an operation is in flight or queued. Hosts disable
// user actions while busy.
func (o *Orchestrator) Busy() bool {
	return o.inFlight != nil || !o.queue.IsEmpty()
}

// Idle reports whether there is nothing left to do.
func (o *Orchestrator) Idle() bool {
	return o.State() == StateIdle
}

// Records returns the registry contents.
func (o *Orchestrator) Records() []registry.Record {
	return o.registry.Records()
}

// Find returns the registered package with the given name.
func (o *Orchestrator) Find(name string) (registry.Record, bool) {
	return o.registry.FindByName(name)
}

// Pending returns the queued URLs, front first.
func (o *Orchestrator) Pending() []string {
	return o.queue.Items()
}

// InFlight returns the operation and target currently outstanding.
func (o *Orchestrator) InFlight() (backend.Op, string, bool) {
	if o.inFlight == nil {
		return "", "", false
	}
	return o.inFlight.op, o.inFlight.target, true
}

// Snapshot is a point-in-time view for presentation.
type Snapshot struct {
	State    State
	Op       backend.Op // Empty when nothing is in flight
	Target   string
	Pending  []string
	Records  []registry.Record
	Cooldown int
}

// Snapshot captures the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	op, target, _ := o.InFlight()
	return Snapshot{
		State:    o.State(),
		Op:       op,
		Target:   target,
		Pending:  o.Pending(),
		Records:  o.Records(),
		Cooldown: o.cooldown,
	}
}

// Cooldown returns the remaining settle ticks.
func (o *Orchestrator) Cooldown() int {
	return o.cooldown
}

func (o *Orchestrator) reportQueue(ctx context.Context) {
	observability.Orchestrator().OnQueueDepth(ctx, o.queue.Len())
}

func (o *Orchestrator) reportRegistry(ctx context.Context) {
	observability.Orchestrator().OnRegistrySize(ctx, o.registry.Len())
}

func toRegistryInfo(info backend.PackageInfo) registry.Info {
	return registry.Info{
		PackageID:   info.PackageID,
		DisplayName: info.DisplayName,
		Author:      info.Author,
		Version:     info.Version,
	}
}
