package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/matzehuels/gitpkg/pkg/errors"
)

func waitCompleted(t *testing.T, h Handle) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !h.IsCompleted() {
		if time.Now().After(deadline) {
			t.Fatal("handle did not complete")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGoSuccess(t *testing.T) {
	release := make(chan struct{})
	h := Go(context.Background(), func(ctx context.Context) ([]PackageInfo, error) {
		<-release
		return []PackageInfo{{PackageID: "a@url"}}, nil
	})

	if h.IsCompleted() {
		t.Fatal("handle completed before fn returned")
	}
	if h.Status() != StatusPending {
		t.Errorf("Status() = %v, want %v", h.Status(), StatusPending)
	}
	if h.Result() != nil {
		t.Error("Result() should be nil while pending")
	}

	close(release)
	waitCompleted(t, h)

	if h.Status() != StatusSuccess {
		t.Errorf("Status() = %v, want %v", h.Status(), StatusSuccess)
	}
	if len(h.Result()) != 1 || h.Result()[0].PackageID != "a@url" {
		t.Errorf("Result() = %v, want one package a@url", h.Result())
	}
	if h.Err() != nil {
		t.Errorf("Err() = %v, want nil", h.Err())
	}
}

func TestGoFailure(t *testing.T) {
	want := errors.New("boom")
	h := Go(context.Background(), func(ctx context.Context) ([]PackageInfo, error) {
		return nil, want
	})
	waitCompleted(t, h)

	if h.Status() != StatusFailure {
		t.Errorf("Status() = %v, want %v", h.Status(), StatusFailure)
	}
	if !errors.Is(h.Err(), want) {
		t.Errorf("Err() = %v, want %v", h.Err(), want)
	}
}

func TestHandleIDsAreUnique(t *testing.T) {
	a := Completed(nil, nil)
	b := Completed(nil, nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("handle IDs = %q, %q, want unique non-empty", a.ID(), b.ID())
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusPending: "pending",
		StatusSuccess: "success",
		StatusFailure: "failure",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestMemoryAddAndList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Publish("com.example.a", "https://example.com/a.git", PackageInfo{DisplayName: "A", Version: "1.0.0"})

	h := m.Add(ctx, "https://example.com/a.git")
	if !h.IsCompleted() || h.Status() != StatusSuccess {
		t.Fatalf("Add() status = %v, err = %v", h.Status(), h.Err())
	}
	if got := h.Result()[0].PackageID; got != "com.example.a@https://example.com/a.git" {
		t.Errorf("Add() PackageID = %q", got)
	}

	list := m.List(ctx)
	if len(list.Result()) != 1 {
		t.Errorf("List() returned %d packages, want 1", len(list.Result()))
	}
}

func TestMemoryAddUnknownURL(t *testing.T) {
	m := NewMemory()
	h := m.Add(context.Background(), "https://example.com/missing.git")

	if h.Status() != StatusFailure {
		t.Fatalf("Add(unknown) status = %v, want failure", h.Status())
	}
	if !pkgerrors.Is(h.Err(), pkgerrors.ErrCodePackageNotFound) {
		t.Errorf("Add(unknown) code = %v, want %v", pkgerrors.GetCode(h.Err()), pkgerrors.ErrCodePackageNotFound)
	}
}

func TestMemoryRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Install(PackageInfo{PackageID: "com.example.a@https://example.com/a.git"})

	if h := m.Remove(ctx, "com.example.a"); h.Status() != StatusSuccess {
		t.Errorf("Remove() status = %v, err = %v", h.Status(), h.Err())
	}
	if len(m.Installed()) != 0 {
		t.Errorf("Installed() = %v, want empty", m.Installed())
	}
	if h := m.Remove(ctx, "com.example.a"); h.Status() != StatusFailure {
		t.Errorf("Remove(missing) status = %v, want failure", h.Status())
	}
}

func TestMemoryReinstallReplacesByName(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Install(PackageInfo{PackageID: "com.example.a@https://example.com/a.git", Version: "1.0.0"})
	m.Publish("com.example.a", "https://example.com/a.git", PackageInfo{Version: "2.0.0"})

	m.Add(ctx, "https://example.com/a.git")

	installed := m.Installed()
	if len(installed) != 1 || installed[0].Version != "2.0.0" {
		t.Errorf("Installed() = %v, want single package at 2.0.0", installed)
	}
}

func TestMemoryManualMode(t *testing.T) {
	ctx := context.Background()
	m := NewManualMemory()
	m.Publish("com.example.a", "https://example.com/a.git", PackageInfo{})

	add := m.Add(ctx, "https://example.com/a.git")
	list := m.List(ctx)

	if add.IsCompleted() || list.IsCompleted() {
		t.Fatal("manual handles should stay pending")
	}
	if m.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", m.Pending())
	}
	if m.MaxInFlight() != 2 {
		t.Errorf("MaxInFlight() = %d, want 2", m.MaxInFlight())
	}

	if !m.Complete() {
		t.Fatal("Complete() = false, want true")
	}
	if !add.IsCompleted() || list.IsCompleted() {
		t.Error("Complete() should finish operations in issue order")
	}

	if n := m.CompleteAll(); n != 1 {
		t.Errorf("CompleteAll() = %d, want 1", n)
	}
	if len(list.Result()) != 1 {
		t.Errorf("List() after Add = %d packages, want 1", len(list.Result()))
	}

	calls := m.Calls()
	if len(calls) != 2 || calls[0].Op != OpAdd || calls[1].Op != OpList {
		t.Errorf("Calls() = %v, want [add list]", calls)
	}
}

func TestMemoryScriptedFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	addErr := pkgerrors.New(pkgerrors.ErrCodeCloneFailed, "cannot install package [x]")
	m.FailAdd("x", addErr)
	m.FailList(pkgerrors.New(pkgerrors.ErrCodeListFailed, "offline"))
	m.Install(PackageInfo{PackageID: "p@u"})
	m.FailRemove("p", pkgerrors.New(pkgerrors.ErrCodeRemoveFailed, "locked"))

	if h := m.Add(ctx, "x"); h.Err() != addErr {
		t.Errorf("Add() err = %v, want %v", h.Err(), addErr)
	}
	if h := m.List(ctx); !pkgerrors.Is(h.Err(), pkgerrors.ErrCodeListFailed) {
		t.Errorf("List() err = %v, want LIST_FAILED", h.Err())
	}
	if h := m.Remove(ctx, "p"); !pkgerrors.Is(h.Err(), pkgerrors.ErrCodeRemoveFailed) {
		t.Errorf("Remove() err = %v, want REMOVE_FAILED", h.Err())
	}

	m.FailList(nil)
	if h := m.List(ctx); h.Status() != StatusSuccess {
		t.Errorf("List() after FailList(nil) status = %v, want success", h.Status())
	}
}
