package subscription

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/events"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/journal"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// Skip reasons reported in InjectOutcome.
const (
	SkipBackgroundTab = "background_tab"
	SkipUntrackedTab  = "untracked_tab"
	SkipSubframe      = "subframe"
	SkipScheme        = "unsupported_scheme"
	SkipNoInjector    = "no_injector"
)

// Injector runs a script in a tab at the earliest document lifecycle point.
type Injector interface {
	Inject(ctx context.Context, tabID, script string) error
}

// InjectOutcome describes what happened for one committed navigation.
// Injection is best-effort: a failed attempt is a recorded outcome, not an
// error that propagates to the navigation pipeline.
type InjectOutcome struct {
	Injected   bool
	SkipReason string
	Err        error
}

// Watcher decides, per committed navigation, whether to inject the
// subscription helper script into the navigated frame's tab.
type Watcher struct {
	registry *tabs.Registry
	injector Injector
	script   string
	journal  *journal.Journal
	broker   *events.Broker
}

func NewWatcher(registry *tabs.Registry, injector Injector, script string, jrnl *journal.Journal, broker *events.Broker) *Watcher {
	return &Watcher{
		registry: registry,
		injector: injector,
		script:   script,
		journal:  jrnl,
		broker:   broker,
	}
}

// SetInjector swaps the injector. Used at startup when the injector is built
// after the watcher, before any navigation events flow.
func (w *Watcher) SetInjector(injector Injector) {
	w.injector = injector
}

// OnNavigationCommitted handles one committed navigation. Guards run in
// order: the background pseudo-tab is never injected into, untracked tabs
// are skipped, only main-frame commits inject, and only http(s)/ws(s)
// documents qualify. At most one injection is attempted per call.
func (w *Watcher) OnNavigationCommitted(details types.NavigationDetails) InjectOutcome {
	if details.TabID == tabs.BackgroundTabID {
		return InjectOutcome{SkipReason: SkipBackgroundTab}
	}

	info, tracked := w.registry.Get(details.TabID)
	if !tracked {
		return InjectOutcome{SkipReason: SkipUntrackedTab}
	}

	if !details.IsMainFrame() {
		return InjectOutcome{SkipReason: SkipSubframe}
	}
	if info.MainFrameID != "" && details.FrameID != info.MainFrameID {
		return InjectOutcome{SkipReason: SkipSubframe}
	}

	if !IsHTTPOrWS(details.URL) {
		return InjectOutcome{SkipReason: SkipScheme}
	}

	if w.injector == nil {
		return InjectOutcome{SkipReason: SkipNoInjector}
	}
	if err := w.injector.Inject(context.Background(), details.TabID, w.script); err != nil {
		// Tabs close and navigate away mid-injection all the time; log and
		// move on.
		slog.Debug("helper script injection failed", "tab_id", details.TabID, "url", details.URL, "error", err)
		return InjectOutcome{Err: err}
	}

	w.journal.Record(events.KindScriptInjected, 0, details.URL, details.TabID)
	w.broker.Publish(events.NewEvent(events.KindScriptInjected, map[string]string{
		"tab_id": details.TabID,
		"url":    details.URL,
	}))
	return InjectOutcome{Injected: true}
}

// IsHTTPOrWS reports whether the URL uses an http, https, ws or wss scheme.
func IsHTTPOrWS(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
		return true
	}
	return false
}
