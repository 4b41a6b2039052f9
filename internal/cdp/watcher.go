package cdp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// NavigationFunc receives every committed navigation observed in an attached
// tab, main frames and subframes alike. The callback decides what to do with
// it; the watcher only reports.
type NavigationFunc func(details types.NavigationDetails)

// Watcher maintains chromedp connections to browser tabs and surfaces
// committed navigations. It also exposes script injection into attached tabs.
type Watcher struct {
	cdpURL      string
	syncEvery   time.Duration
	registry    *tabs.Registry
	onNav       NavigationFunc
	allocCtx    context.Context
	allocCancel context.CancelFunc
	monitorCtx  context.Context
	tabs        map[target.ID]*tabContext
	tabsMu      sync.RWMutex
	done        chan struct{}
	wg          sync.WaitGroup
}

type tabContext struct {
	id     target.ID
	url    string
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWatcher(cdpURL string, syncEvery time.Duration, registry *tabs.Registry, onNav NavigationFunc) *Watcher {
	if syncEvery <= 0 {
		syncEvery = time.Second
	}
	return &Watcher{
		cdpURL:    cdpURL,
		syncEvery: syncEvery,
		registry:  registry,
		onNav:     onNav,
		tabs:      make(map[target.ID]*tabContext),
		done:      make(chan struct{}),
	}
}

// Connect attaches to the browser and to every open page target, then starts
// the background target-sync loop that picks up tabs opened later.
func (w *Watcher) Connect(ctx context.Context) error {
	_ = ctx
	slog.Info("Connecting to Chromium", "url", w.cdpURL)

	w.allocCtx, w.allocCancel = chromedp.NewRemoteAllocator(context.Background(), w.cdpURL)

	monitorCtx, _ := chromedp.NewContext(w.allocCtx)
	if err := chromedp.Run(monitorCtx); err != nil {
		return types.NewError(types.CodeCDPUnavailable, "failed to connect to browser", err)
	}
	w.monitorCtx = monitorCtx

	if err := w.syncTargets(); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.syncLoop()
	return nil
}

// syncLoop periodically reconciles attached tabs against the browser's open
// targets.
func (w *Watcher) syncLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.syncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.syncTargets(); err != nil {
				slog.Warn("target sync failed", "error", err)
			}
		}
	}
}

func (w *Watcher) syncTargets() error {
	targets, err := chromedp.Targets(w.monitorCtx)
	if err != nil {
		return types.NewError(types.CodeCDPUnavailable, "failed to enumerate targets", err)
	}

	alive := make(map[target.ID]bool, len(targets))
	for _, t := range targets {
		if t.Type != "page" || strings.HasPrefix(t.URL, "devtools://") {
			continue
		}
		alive[t.TargetID] = true

		w.tabsMu.RLock()
		_, attached := w.tabs[t.TargetID]
		w.tabsMu.RUnlock()
		if attached {
			continue
		}
		if err := w.attachToTab(t.TargetID, t.URL, t.Title); err != nil {
			slog.Error("Failed to attach to tab", "target_id", t.TargetID, "url", truncateURL(t.URL), "error", err)
		}
	}

	// Detach tabs that are gone.
	w.tabsMu.Lock()
	for id, tab := range w.tabs {
		if !alive[id] {
			tab.cancel()
			delete(w.tabs, id)
			w.registry.Remove(string(id))
			slog.Info("Tab closed", "tab_id", id)
		}
	}
	w.tabsMu.Unlock()
	return nil
}

func (w *Watcher) attachToTab(targetID target.ID, url, title string) error {
	if _, err := w.registry.Register(string(targetID), url, title); err != nil {
		return fmt.Errorf("failed to register tab: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(w.allocCtx, chromedp.WithTargetID(targetID))
	tab := &tabContext{id: targetID, url: url, ctx: tabCtx, cancel: tabCancel}

	w.tabsMu.Lock()
	w.tabs[targetID] = tab
	w.tabsMu.Unlock()

	if err := chromedp.Run(tabCtx, page.Enable()); err != nil {
		tabCancel()
		w.tabsMu.Lock()
		delete(w.tabs, targetID)
		w.tabsMu.Unlock()
		w.registry.Remove(string(targetID))
		return fmt.Errorf("failed to enable page domain: %w", err)
	}

	if err := w.recordMainFrame(tabCtx, targetID); err != nil {
		slog.Debug("could not resolve main frame", "target_id", targetID, "error", err)
	}

	chromedp.ListenTarget(tabCtx, w.createEventHandler(string(targetID)))
	slog.Info("Attached to tab", "target_id", targetID, "url", truncateURL(url))
	return nil
}

// recordMainFrame stores the tab's top-level frame id in the registry so
// navigation events can be classified.
func (w *Watcher) recordMainFrame(tabCtx context.Context, targetID target.ID) error {
	frameCtx, cancel := context.WithTimeout(tabCtx, 10*time.Second)
	defer cancel()

	var tree *page.FrameTree
	err := chromedp.Run(frameCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		tree, err = page.GetFrameTree().Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}
	if tree != nil && tree.Frame != nil {
		w.registry.SetMainFrame(string(targetID), string(tree.Frame.ID))
	}
	return nil
}

func (w *Watcher) createEventHandler(tabID string) func(ev interface{}) {
	return func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventFrameNavigated:
			details := types.NavigationDetails{
				TabID:         tabID,
				FrameID:       string(e.Frame.ID),
				ParentFrameID: string(e.Frame.ParentID),
				URL:           e.Frame.URL,
			}
			if details.IsMainFrame() {
				if _, err := w.registry.Register(tabID, e.Frame.URL, ""); err == nil {
					w.registry.SetMainFrame(tabID, details.FrameID)
					slog.Info("Tab navigated", "tab_id", tabID, "url", truncateURL(e.Frame.URL))
				}
			}
			if w.onNav != nil {
				w.onNav(details)
			}
		case *page.EventNavigatedWithinDocument:
			// SPA route changes update the registry URL but do not commit a
			// new document, so no navigation callback fires.
			if _, err := w.registry.Register(tabID, e.URL, ""); err == nil {
				slog.Debug("Tab navigated (SPA)", "tab_id", tabID, "url", truncateURL(e.URL))
			}
		}
	}
}

// Inject evaluates a script in the given tab and registers it to run at
// document start on every future navigation of that tab.
func (w *Watcher) Inject(ctx context.Context, tabID, script string) error {
	w.tabsMu.RLock()
	tab, ok := w.tabs[target.ID(tabID)]
	w.tabsMu.RUnlock()
	if !ok {
		return types.NewError(types.CodeTabNotFound, fmt.Sprintf("tab %s is not attached", tabID), nil)
	}

	injectCtx, cancel := context.WithTimeout(tab.ctx, 15*time.Second)
	defer cancel()

	err := chromedp.Run(injectCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
		chromedp.Evaluate(script, nil),
	)
	if err != nil {
		return types.NewError(types.CodeEvalFailure, "script injection failed", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// TabCount returns the number of attached tabs.
func (w *Watcher) TabCount() int {
	w.tabsMu.RLock()
	defer w.tabsMu.RUnlock()
	return len(w.tabs)
}

func (w *Watcher) Close() error {
	close(w.done)
	w.wg.Wait()

	w.tabsMu.Lock()
	for id, tab := range w.tabs {
		tab.cancel()
		delete(w.tabs, id)
	}
	w.tabsMu.Unlock()

	if w.allocCancel != nil {
		w.allocCancel()
	}

	slog.Info("CDP watcher closed")
	return nil
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
