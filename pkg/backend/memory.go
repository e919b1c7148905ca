package backend

import (
	"context"
	"strings"
	"sync"

	"github.com/matzehuels/gitpkg/pkg/errors"
)

// Call records one operation issued to a Memory backend.
type Call struct {
	Op  Op
	Arg string // URL for add, package name for remove, empty for list
}

// Memory is an in-memory backend for tests.
//
// Packages are published by URL with Publish; Add installs a published
// package, replacing any installed package of the same name. In manual
// mode handles stay pending until Complete or CompleteAll is called, which
// lets tests observe in-flight behavior tick by tick.
type Memory struct {
	mu          sync.Mutex
	installed   []PackageInfo
	published   map[string]PackageInfo
	addErrs     map[string]error
	removeErrs  map[string]error
	listErr     error
	manual      bool
	pending     []pendingOp
	calls       []Call
	inFlight    int
	maxInFlight int
}

type pendingOp struct {
	call   Call
	handle *asyncHandle
}

// NewMemory creates an empty backend that completes operations immediately.
func NewMemory() *Memory {
	return &Memory{
		published:  make(map[string]PackageInfo),
		addErrs:    make(map[string]error),
		removeErrs: make(map[string]error),
	}
}

// NewManualMemory creates an empty backend whose operations complete only
// when Complete or CompleteAll is called.
func NewManualMemory() *Memory {
	m := NewMemory()
	m.manual = true
	return m
}

// Publish makes a package installable by url. The package id is rewritten
// to name@url.
func (m *Memory) Publish(name, url string, info PackageInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info.PackageID = name + "@" + url
	m.published[url] = info
}

// Install marks a package as already installed.
func (m *Memory) Install(info PackageInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.install(info)
}

// FailAdd makes every Add of url fail with err.
func (m *Memory) FailAdd(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addErrs[url] = err
}

// FailRemove makes every Remove of name fail with err.
func (m *Memory) FailRemove(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeErrs[name] = err
}

// FailList makes every List fail with err; nil restores success.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// List implements Backend.
func (m *Memory) List(ctx context.Context) Handle {
	return m.issue(Call{Op: OpList})
}

// Add implements Backend.
func (m *Memory) Add(ctx context.Context, url string) Handle {
	return m.issue(Call{Op: OpAdd, Arg: url})
}

// Remove implements Backend.
func (m *Memory) Remove(ctx context.Context, name string) Handle {
	return m.issue(Call{Op: OpRemove, Arg: name})
}

// Complete finishes the oldest pending operation and reports whether there
// was one. It is a no-op for non-manual backends.
func (m *Memory) Complete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return false
	}
	op := m.pending[0]
	m.pending = m.pending[1:]
	m.finish(op)
	return true
}

// CompleteAll finishes every pending operation in issue order.
func (m *Memory) CompleteAll() int {
	n := 0
	for m.Complete() {
		n++
	}
	return n
}

// Pending returns the number of operations not yet completed.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Calls returns every operation issued so far, in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// MaxInFlight returns the largest number of simultaneously pending
// operations observed.
func (m *Memory) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Installed returns the currently installed packages.
func (m *Memory) Installed() []PackageInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PackageInfo, len(m.installed))
	copy(out, m.installed)
	return out
}

func (m *Memory) issue(call Call) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, call)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}

	op := pendingOp{call: call, handle: newHandle()}
	if m.manual {
		m.pending = append(m.pending, op)
	} else {
		m.finish(op)
	}
	return op.handle
}

// finish must be called with m.mu held.
func (m *Memory) finish(op pendingOp) {
	m.inFlight--
	switch op.call.Op {
	case OpList:
		m.finishList(op.handle)
	case OpAdd:
		m.finishAdd(op.handle, op.call.Arg)
	case OpRemove:
		m.finishRemove(op.handle, op.call.Arg)
	}
}

func (m *Memory) finishList(h *asyncHandle) {
	if m.listErr != nil {
		h.complete(nil, m.listErr)
		return
	}
	out := make([]PackageInfo, len(m.installed))
	copy(out, m.installed)
	h.complete(out, nil)
}

func (m *Memory) finishAdd(h *asyncHandle, url string) {
	if err, ok := m.addErrs[url]; ok {
		h.complete(nil, err)
		return
	}
	info, ok := m.published[url]
	if !ok {
		h.complete(nil, errors.New(errors.ErrCodePackageNotFound, "Cannot find package [%s]", url))
		return
	}
	m.install(info)
	h.complete([]PackageInfo{info}, nil)
}

func (m *Memory) finishRemove(h *asyncHandle, name string) {
	if err, ok := m.removeErrs[name]; ok {
		h.complete(nil, err)
		return
	}
	for i, p := range m.installed {
		if packageName(p.PackageID) == name {
			m.installed = append(m.installed[:i], m.installed[i+1:]...)
			h.complete(nil, nil)
			return
		}
	}
	h.complete(nil, errors.New(errors.ErrCodePackageNotFound, "package %s is not installed", name))
}

func (m *Memory) install(info PackageInfo) {
	name := packageName(info.PackageID)
	for i, p := range m.installed {
		if packageName(p.PackageID) == name {
			m.installed[i] = info
			return
		}
	}
	m.installed = append(m.installed, info)
}

func packageName(id string) string {
	name, _, _ := strings.Cut(id, "@")
	return name
}

var _ Backend = (*Memory)(nil)
