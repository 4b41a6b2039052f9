package assistant

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/cdpcontrol"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// ControlPlane is the slice of the CDP control plane the launcher needs.
type ControlPlane interface {
	ActiveTab(ctx context.Context) (cdpcontrol.TabInfo, error)
	EvalOnTab(ctx context.Context, tabID, js string) (json.RawMessage, error)
}

// Launcher opens the element-picking assistant in the active browser tab.
type Launcher struct {
	cdp ControlPlane
}

func NewLauncher(cdp ControlPlane) *Launcher {
	return &Launcher{cdp: cdp}
}

// Open queries the active tab and attaches the assistant overlay to it.
// Returns the tab ID the assistant was attached to. Missing or non-web
// active tabs surface as errors; the caller decides how to report them.
func (l *Launcher) Open(ctx context.Context) (string, error) {
	tab, err := l.cdp.ActiveTab(ctx)
	if err != nil {
		return "", err
	}
	if !isWebPage(tab.URL) {
		return "", types.NewError(types.CodeValidation, "assistant cannot attach to non-web pages", nil)
	}

	if _, err := l.cdp.EvalOnTab(ctx, tab.TabID, attachScript()); err != nil {
		return "", err
	}

	slog.Info("assistant attached", "tab_id", tab.TabID, "url", tab.URL)
	return tab.TabID, nil
}

func isWebPage(url string) bool {
	return len(url) > 7 && (url[:7] == "http://" || (len(url) > 8 && url[:8] == "https://"))
}

// attachScript starts the in-page assistant overlay. Attaching twice to the
// same document reuses the existing instance.
func attachScript() string {
	return cdpcontrol.WrapJSEval(`
    if (!window.__abAssistant) {
      window.__abAssistant = { active: false };
    }
    if (window.__abAssistant.active) {
      return { attached: true, reused: true };
    }
    window.__abAssistant.active = true;
    document.documentElement.setAttribute("data-ab-assistant", "active");
    return { attached: true, reused: false };
  `)
}
