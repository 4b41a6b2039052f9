package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/events"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/journal"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

type fakeInjector struct {
	calls []string
	err   error
}

func (f *fakeInjector) Inject(ctx context.Context, tabID, script string) error {
	f.calls = append(f.calls, tabID)
	return f.err
}

func newTestWatcher(t *testing.T, inj Injector) (*Watcher, *tabs.Registry) {
	t.Helper()
	registry := tabs.NewRegistry()
	jrnl := journal.New(t.TempDir(), 16, 1)
	t.Cleanup(func() { _ = jrnl.Close() })
	return NewWatcher(registry, inj, "/* helper */", jrnl, events.NewBroker()), registry
}

func TestOnNavigationCommittedInjectsMainFrame(t *testing.T) {
	inj := &fakeInjector{}
	w, registry := newTestWatcher(t, inj)
	if _, err := registry.Register("tab-1", "https://example.org/", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	out := w.OnNavigationCommitted(types.NavigationDetails{
		TabID:   "tab-1",
		FrameID: "frame-a",
		URL:     "https://example.org/page",
	})

	if !out.Injected {
		t.Fatalf("OnNavigationCommitted() = %+v; want Injected", out)
	}
	if len(inj.calls) != 1 {
		t.Fatalf("injector calls = %d; want exactly 1", len(inj.calls))
	}
	if inj.calls[0] != "tab-1" {
		t.Fatalf("injected tab = %q; want %q", inj.calls[0], "tab-1")
	}
}

func TestOnNavigationCommittedGuards(t *testing.T) {
	cases := []struct {
		name    string
		details types.NavigationDetails
		want    string
	}{
		{
			name:    "background pseudo-tab",
			details: types.NavigationDetails{TabID: tabs.BackgroundTabID, FrameID: "f", URL: "https://example.org/"},
			want:    SkipBackgroundTab,
		},
		{
			name:    "untracked tab",
			details: types.NavigationDetails{TabID: "ghost", FrameID: "f", URL: "https://example.org/"},
			want:    SkipUntrackedTab,
		},
		{
			name:    "subframe navigation",
			details: types.NavigationDetails{TabID: "tab-1", FrameID: "child", ParentFrameID: "frame-a", URL: "https://ads.example.org/"},
			want:    SkipSubframe,
		},
		{
			name:    "chrome scheme",
			details: types.NavigationDetails{TabID: "tab-1", FrameID: "frame-a", URL: "chrome://settings"},
			want:    SkipScheme,
		},
		{
			name:    "file scheme",
			details: types.NavigationDetails{TabID: "tab-1", FrameID: "frame-a", URL: "file:///tmp/page.html"},
			want:    SkipScheme,
		},
		{
			name:    "about blank",
			details: types.NavigationDetails{TabID: "tab-1", FrameID: "frame-a", URL: "about:blank"},
			want:    SkipScheme,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inj := &fakeInjector{}
			w, registry := newTestWatcher(t, inj)
			if _, err := registry.Register("tab-1", "https://example.org/", ""); err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			out := w.OnNavigationCommitted(tc.details)
			if out.Injected {
				t.Fatalf("OnNavigationCommitted() injected; want skip %q", tc.want)
			}
			if out.SkipReason != tc.want {
				t.Fatalf("SkipReason = %q; want %q", out.SkipReason, tc.want)
			}
			if len(inj.calls) != 0 {
				t.Fatalf("injector calls = %d; want 0", len(inj.calls))
			}
		})
	}
}

func TestOnNavigationCommittedSwallowsInjectorError(t *testing.T) {
	inj := &fakeInjector{err: errors.New("tab closed mid-injection")}
	w, registry := newTestWatcher(t, inj)
	if _, err := registry.Register("tab-1", "https://example.org/", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	out := w.OnNavigationCommitted(types.NavigationDetails{
		TabID:   "tab-1",
		FrameID: "frame-a",
		URL:     "https://example.org/",
	})

	if out.Injected {
		t.Fatalf("OnNavigationCommitted() = injected; want failed outcome")
	}
	if out.Err == nil {
		t.Fatalf("OnNavigationCommitted() Err = nil; want recorded error")
	}
	if out.SkipReason != "" {
		t.Fatalf("SkipReason = %q; want empty for a failed attempt", out.SkipReason)
	}
}

func TestOnNavigationCommittedMismatchedMainFrame(t *testing.T) {
	inj := &fakeInjector{}
	w, registry := newTestWatcher(t, inj)
	if _, err := registry.Register("tab-1", "https://example.org/", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	registry.SetMainFrame("tab-1", "frame-main")

	out := w.OnNavigationCommitted(types.NavigationDetails{
		TabID:   "tab-1",
		FrameID: "frame-other",
		URL:     "https://example.org/",
	})
	if out.SkipReason != SkipSubframe {
		t.Fatalf("SkipReason = %q; want %q", out.SkipReason, SkipSubframe)
	}
}

func TestIsHTTPOrWS(t *testing.T) {
	cases := map[string]bool{
		"https://example.org/":      true,
		"http://example.org/":       true,
		"ws://example.org/socket":   true,
		"wss://example.org/socket":  true,
		"HTTPS://EXAMPLE.ORG/":      true,
		"chrome://extensions":       false,
		"chrome-extension://abc/x":  false,
		"file:///etc/hosts":         false,
		"about:blank":               false,
		"data:text/html,<p>x</p>":   false,
		"javascript:void(0)":        false,
		"view-source:http://x.com/": false,
		"":                          false,
	}
	for raw, want := range cases {
		if got := IsHTTPOrWS(raw); got != want {
			t.Errorf("IsHTTPOrWS(%q) = %v; want %v", raw, got, want)
		}
	}
}
