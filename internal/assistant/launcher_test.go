package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/cdpcontrol"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

type fakeControlPlane struct {
	tab     cdpcontrol.TabInfo
	tabErr  error
	evalErr error
	evals   []string
}

func (f *fakeControlPlane) ActiveTab(ctx context.Context) (cdpcontrol.TabInfo, error) {
	return f.tab, f.tabErr
}

func (f *fakeControlPlane) EvalOnTab(ctx context.Context, tabID, js string) (json.RawMessage, error) {
	f.evals = append(f.evals, tabID)
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return json.RawMessage(`{"attached":true}`), nil
}

func TestOpenAttachesToActiveTab(t *testing.T) {
	cp := &fakeControlPlane{tab: cdpcontrol.TabInfo{TabID: "tab-9", URL: "https://example.org/"}}
	l := NewLauncher(cp)

	tabID, err := l.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if tabID != "tab-9" {
		t.Fatalf("Open() = %q; want %q", tabID, "tab-9")
	}
	if len(cp.evals) != 1 || cp.evals[0] != "tab-9" {
		t.Fatalf("evals = %v; want one attach on tab-9", cp.evals)
	}
}

func TestOpenRejectsNonWebActiveTab(t *testing.T) {
	cp := &fakeControlPlane{tab: cdpcontrol.TabInfo{TabID: "tab-1", URL: "chrome://newtab/"}}
	l := NewLauncher(cp)

	_, err := l.Open(context.Background())
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeValidation {
		t.Fatalf("Open() error = %v; want VALIDATION", err)
	}
	if len(cp.evals) != 0 {
		t.Fatalf("evals = %v; want none for non-web tab", cp.evals)
	}
}

func TestOpenPropagatesNoActiveTab(t *testing.T) {
	cp := &fakeControlPlane{tabErr: types.NewError(types.CodeTabNotFound, "no open page targets", nil)}
	l := NewLauncher(cp)

	_, err := l.Open(context.Background())
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeTabNotFound {
		t.Fatalf("Open() error = %v; want TAB_NOT_FOUND", err)
	}
}

func TestOpenPropagatesEvalFailure(t *testing.T) {
	cp := &fakeControlPlane{
		tab:     cdpcontrol.TabInfo{TabID: "tab-1", URL: "https://example.org/"},
		evalErr: types.NewError(types.CodeEvalFailure, "script evaluation failed", nil),
	}
	l := NewLauncher(cp)

	if _, err := l.Open(context.Background()); err == nil {
		t.Fatalf("Open() = nil; want eval error")
	}
}
