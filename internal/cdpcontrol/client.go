package cdpcontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/chromedp/cdproto/target"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// TabInfo describes one open page target as seen from the control plane.
type TabInfo struct {
	TabID string `json:"tab_id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type tabSession struct {
	sessionID  string
	lastActive time.Time
}

// Client is the active control plane over the browser: tab listing, script
// evaluation and request blocklist pushes. It keeps one flat session per page
// target and re-attaches lazily when targets come and go.
type Client struct {
	raw         *rawCDP
	evalTimeout time.Duration

	mu   sync.Mutex
	tabs map[target.ID]*tabSession
}

// NewClient builds a control-plane client for the given CDP HTTP base URL,
// e.g. "http://127.0.0.1:9222".
func NewClient(cdpURL string, evalTimeout time.Duration) *Client {
	if evalTimeout <= 0 {
		evalTimeout = 15 * time.Second
	}
	return &Client{
		raw:         newRawCDP(cdpURL),
		evalTimeout: evalTimeout,
		tabs:        make(map[target.ID]*tabSession),
	}
}

// Connect establishes the browser-level WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.raw.connect(ctx); err != nil {
		return types.NewError(types.CodeCDPUnavailable, "cannot connect to browser debugging endpoint", err)
	}
	return nil
}

// Close detaches all sessions and closes the WebSocket.
func (c *Client) Close() {
	c.mu.Lock()
	sessions := make([]string, 0, len(c.tabs))
	for id, s := range c.tabs {
		sessions = append(sessions, s.sessionID)
		delete(c.tabs, id)
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, sid := range sessions {
		_ = c.raw.detachFromTarget(ctx, sid)
	}
	c.raw.close()
}

// ListTabs returns the open page targets in most-recently-focused order.
func (c *Client) ListTabs(ctx context.Context) ([]TabInfo, error) {
	targets, err := c.pageTargets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TabInfo, 0, len(targets))
	for _, t := range targets {
		out = append(out, TabInfo{TabID: string(t.TargetID), URL: t.URL, Title: t.Title})
	}
	return out, nil
}

// ActiveTab returns the most recently focused page target. The /json/list
// endpoint orders targets MRU-first, so the first page entry is the active
// tab.
func (c *Client) ActiveTab(ctx context.Context) (TabInfo, error) {
	targets, err := c.pageTargets(ctx)
	if err != nil {
		return TabInfo{}, err
	}
	if len(targets) == 0 {
		return TabInfo{}, types.NewError(types.CodeTabNotFound, "no open page targets", nil)
	}
	t := targets[0]
	return TabInfo{TabID: string(t.TargetID), URL: t.URL, Title: t.Title}, nil
}

// EvalOnTab runs a JS expression on the given tab and decodes the standard
// result envelope. The expression must be wrapped with WrapJSEval (or follow
// the same envelope contract).
func (c *Client) EvalOnTab(ctx context.Context, tabID, js string) (json.RawMessage, error) {
	session, err := c.sessionFor(ctx, target.ID(tabID))
	if err != nil {
		return nil, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, c.evalTimeout)
	defer cancel()

	raw, err := c.raw.evaluate(evalCtx, session.sessionID, js)
	if err != nil {
		if evalCtx.Err() == context.DeadlineExceeded {
			return nil, types.NewError(types.CodeEvalTimeout, "script evaluation timed out", err)
		}
		if isTransient(err) {
			// Session likely went stale (tab navigated or crashed). Drop it
			// and retry once with a fresh attachment.
			c.dropSession(target.ID(tabID))
			session, rerr := c.sessionFor(ctx, target.ID(tabID))
			if rerr != nil {
				return nil, rerr
			}
			raw, err = c.raw.evaluate(evalCtx, session.sessionID, js)
		}
		if err != nil {
			return nil, types.NewError(types.CodeEvalFailure, "script evaluation failed", err)
		}
	}

	var envelope struct {
		OK           bool            `json:"ok"`
		Data         json.RawMessage `json:"data"`
		ErrorCode    string          `json:"error_code"`
		ErrorMessage string          `json:"error_message"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, types.NewError(types.CodeEvalFailure, "malformed script result", err)
	}
	if !envelope.OK {
		msg := envelope.ErrorMessage
		if msg == "" {
			msg = "script reported failure"
		}
		code := types.CodeEvalFailure
		if envelope.ErrorCode != "" {
			code = envelope.ErrorCode
		}
		return nil, types.NewError(code, msg, nil)
	}
	return envelope.Data, nil
}

// SetBlockedURLs pushes the given URL patterns to every open page target.
// New tabs pick the patterns up on the next push; callers re-push after the
// set changes. An empty slice clears blocking everywhere.
func (c *Client) SetBlockedURLs(ctx context.Context, patterns []string) error {
	targets, err := c.pageTargets(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	applied := 0
	for _, t := range targets {
		session, err := c.sessionFor(ctx, t.TargetID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := c.raw.setBlockedURLs(ctx, session.sessionID, patterns); err != nil {
			slog.Warn("blocklist push failed for tab", "tab_id", t.TargetID, "error", err)
			c.dropSession(t.TargetID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		applied++
	}

	if applied == 0 && firstErr != nil {
		return types.NewError(types.CodeCDPUnavailable, "blocklist push failed on all tabs", firstErr)
	}
	slog.Debug("blocklist applied", "patterns", len(patterns), "tabs", applied)
	return nil
}

// pageTargets lists open targets and keeps only real pages, pruning sessions
// for targets that no longer exist.
func (c *Client) pageTargets(ctx context.Context) ([]*target.Info, error) {
	all, err := c.raw.listTargets(ctx)
	if err != nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "cannot list browser targets", err)
	}

	alive := make(map[target.ID]bool, len(all))
	pages := make([]*target.Info, 0, len(all))
	for _, t := range all {
		alive[t.TargetID] = true
		if t.Type == "page" && !strings.HasPrefix(t.URL, "devtools://") {
			pages = append(pages, t)
		}
	}

	c.mu.Lock()
	for id := range c.tabs {
		if !alive[id] {
			delete(c.tabs, id)
		}
	}
	c.mu.Unlock()

	return pages, nil
}

// sessionFor returns the flat session for a tab, attaching on first use.
func (c *Client) sessionFor(ctx context.Context, tabID target.ID) (*tabSession, error) {
	c.mu.Lock()
	if s, ok := c.tabs[tabID]; ok {
		s.lastActive = time.Now()
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	sessionID, err := c.raw.attachToTarget(ctx, string(tabID))
	if err != nil {
		return nil, types.NewError(types.CodeTabNotFound, fmt.Sprintf("cannot attach to tab %s", tabID), err)
	}

	s := &tabSession{sessionID: sessionID, lastActive: time.Now()}
	if err := c.raw.enableNetworkDomain(ctx, sessionID); err != nil {
		slog.Debug("Network.enable failed", "tab_id", tabID, "error", err)
	}

	c.mu.Lock()
	c.tabs[tabID] = s
	c.mu.Unlock()
	return s, nil
}

func (c *Client) dropSession(tabID target.ID) {
	c.mu.Lock()
	delete(c.tabs, tabID)
	c.mu.Unlock()
}

// transientHints mark errors worth one re-attach retry.
var transientHints = []string{
	"Session with given id not found",
	"Target closed",
	"Inspected target navigated or closed",
	"connection closed",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
