package registry

import (
	"errors"
	"reflect"
	"testing"
)

func info(name, url string) Info {
	return Info{PackageID: name + "@" + url, DisplayName: name, Version: "1.0.0"}
}

func TestSplitPackageID(t *testing.T) {
	tests := []struct {
		id       string
		wantName string
		wantURL  string
	}{
		{"com.example.a@https://example.com/a.git", "com.example.a", "https://example.com/a.git"},
		{"com.example.b@git@github.com:example/b.git", "com.example.b", "git@github.com:example/b.git"},
		{"com.example.c@1.2.3", "com.example.c", "1.2.3"},
		{"noversion", "noversion", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			name, url := SplitPackageID(tt.id)
			if name != tt.wantName || url != tt.wantURL {
				t.Errorf("SplitPackageID(%q) = %q, %q, want %q, %q", tt.id, name, url, tt.wantName, tt.wantURL)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	r := New(DefaultBuiltinPrefix)

	rec, added, skipped := r.Upsert(Info{
		PackageID:   "com.example.a@https://example.com/a.git",
		DisplayName: "Package A",
		Author:      "Example",
		Version:     "2.1.0",
	})
	if !added || skipped {
		t.Fatalf("Upsert() added = %v, skipped = %v, want true, false", added, skipped)
	}

	want := Record{
		Name:        "com.example.a",
		URL:         "https://example.com/a.git",
		DisplayName: "Package A",
		Author:      "Example",
		Version:     "2.1.0",
	}
	if rec != want {
		t.Errorf("Upsert() record = %+v, want %+v", rec, want)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestUpsertSkipsBuiltin(t *testing.T) {
	r := New(DefaultBuiltinPrefix)

	_, added, skipped := r.Upsert(info("com.unity.textmeshpro", "3.0.6"))
	if added || !skipped {
		t.Errorf("Upsert(builtin) added = %v, skipped = %v, want false, true", added, skipped)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestUpsertEmptyPrefixTracksEverything(t *testing.T) {
	r := New("")
	if _, added, _ := r.Upsert(info("com.unity.textmeshpro", "3.0.6")); !added {
		t.Error("Upsert() with empty builtin prefix should add every package")
	}
}

func TestUpsertIsIdempotentPerURL(t *testing.T) {
	r := New(DefaultBuiltinPrefix)
	r.Upsert(info("com.example.a", "https://example.com/a.git"))
	before := r.Records()

	// Same URL, different metadata: first registered wins.
	_, added, skipped := r.Upsert(Info{PackageID: "com.example.renamed@https://example.com/a.git", Version: "9.9.9"})
	if added || skipped {
		t.Errorf("Upsert(duplicate) added = %v, skipped = %v, want false, false", added, skipped)
	}
	if !reflect.DeepEqual(r.Records(), before) {
		t.Errorf("Records() = %v, want unchanged %v", r.Records(), before)
	}
}

func TestFind(t *testing.T) {
	r := New(DefaultBuiltinPrefix)
	r.Upsert(info("com.example.a", "https://example.com/a.git"))
	r.Upsert(info("com.example.b", "https://example.com/b.git"))

	if rec, ok := r.FindByURL("https://example.com/b.git"); !ok || rec.Name != "com.example.b" {
		t.Errorf("FindByURL() = %+v, %v, want com.example.b", rec, ok)
	}
	if _, ok := r.FindByURL("https://example.com/missing.git"); ok {
		t.Error("FindByURL(missing) should return false")
	}
	if rec, ok := r.FindByName("com.example.a"); !ok || rec.URL != "https://example.com/a.git" {
		t.Errorf("FindByName() = %+v, %v, want a.git", rec, ok)
	}
}

func TestRemoveAndClear(t *testing.T) {
	r := New(DefaultBuiltinPrefix)
	a, _, _ := r.Upsert(info("com.example.a", "https://example.com/a.git"))
	r.Upsert(info("com.example.b", "https://example.com/b.git"))

	if err := r.Remove(a); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := r.FindByURL(a.URL); ok {
		t.Error("record should be gone after Remove()")
	}
	if err := r.Remove(a); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(missing) error = %v, want %v", err, ErrNotFound)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", r.Len())
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	r := New(DefaultBuiltinPrefix)
	r.Upsert(info("com.example.a", "https://example.com/a.git"))

	recs := r.Records()
	recs[0].Name = "mutated"

	if rec, _ := r.FindByURL("https://example.com/a.git"); rec.Name != "com.example.a" {
		t.Error("Records() should return a copy")
	}
}
