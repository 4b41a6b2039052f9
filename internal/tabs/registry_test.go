package tabs

import (
	"errors"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

func TestRegisterRejectsBackgroundTab(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{BackgroundTabID, ""} {
		_, err := r.Register(id, "https://example.org/", "")
		var coded *types.CodedError
		if !errors.As(err, &coded) || coded.Code != types.CodeValidation {
			t.Errorf("Register(%q) error = %v; want VALIDATION", id, err)
		}
	}
	if r.Count() != 0 {
		t.Fatalf("Count() = %d; want 0", r.Count())
	}
}

func TestRegisterUpdatesExistingEntry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("tab-1", "https://old.example/", "Old"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := r.Register("tab-1", "https://new.example/", ""); err != nil {
		t.Fatalf("re-Register() error = %v", err)
	}

	info, ok := r.Get("tab-1")
	if !ok {
		t.Fatalf("Get() not found")
	}
	if info.URL != "https://new.example/" {
		t.Fatalf("URL = %q; want updated url", info.URL)
	}
	if info.Title != "Old" {
		t.Fatalf("Title = %q; want retained title on empty update", info.Title)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d; want 1", r.Count())
	}
}

func TestSetMainFrameAndRemove(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("tab-1", "https://example.org/", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	r.SetMainFrame("tab-1", "frame-a")

	info, _ := r.Get("tab-1")
	if info.MainFrameID != "frame-a" {
		t.Fatalf("MainFrameID = %q; want %q", info.MainFrameID, "frame-a")
	}

	r.Remove("tab-1")
	if _, ok := r.Get("tab-1"); ok {
		t.Fatalf("Get() found tab after Remove()")
	}

	// Removing an unknown tab is a no-op.
	r.Remove("ghost")
}
