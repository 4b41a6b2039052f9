package filters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

func newTestService(t *testing.T, body string) (*Service, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return NewService(store, NewLoader(srv.Client())), srv.URL
}

func TestGetCustomFilterInfoRequiresURL(t *testing.T) {
	svc, _ := newTestService(t, "")
	_, err := svc.GetCustomFilterInfo(context.Background(), "   ", "")
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeValidation {
		t.Fatalf("GetCustomFilterInfo(blank) error = %v; want VALIDATION", err)
	}
}

func TestGetCustomFilterInfoReportsExisting(t *testing.T) {
	svc, url := newTestService(t, "! Title: Existing\n||x.example^\n")

	if _, err := svc.CreateCustomFilter(context.Background(), CustomFilterSpec{CustomURL: url}); err != nil {
		t.Fatalf("CreateCustomFilter() error = %v", err)
	}

	info, err := svc.GetCustomFilterInfo(context.Background(), url, "")
	if err != nil {
		t.Fatalf("GetCustomFilterInfo() error = %v", err)
	}
	if !info.AlreadyExists {
		t.Fatalf("AlreadyExists = false; want true for subscribed url")
	}
}

func TestCreateCustomFilterIsIdempotentByURL(t *testing.T) {
	svc, url := newTestService(t, "||x.example^\n")

	first, err := svc.CreateCustomFilter(context.Background(), CustomFilterSpec{CustomURL: url, Name: "First"})
	if err != nil {
		t.Fatalf("first CreateCustomFilter() error = %v", err)
	}
	second, err := svc.CreateCustomFilter(context.Background(), CustomFilterSpec{CustomURL: url, Name: "Second"})
	if err != nil {
		t.Fatalf("second CreateCustomFilter() error = %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second subscribe ID = %d; want existing %d", second.ID, first.ID)
	}
	if got := len(svc.ListFilters()); got != 1 {
		t.Fatalf("ListFilters() count = %d; want 1", got)
	}
}

func TestPickName(t *testing.T) {
	meta := Metadata{Title: "Header Title"}
	cases := []struct {
		title string
		meta  Metadata
		want  string
	}{
		{"Explicit", meta, "Explicit"},
		{"  ", meta, "Header Title"},
		{"", Metadata{}, "https://example.org/l.txt"},
	}
	for _, tc := range cases {
		if got := pickName(tc.title, tc.meta, "https://example.org/l.txt"); got != tc.want {
			t.Errorf("pickName(%q) = %q; want %q", tc.title, got, tc.want)
		}
	}
}

func TestEnabledFilters(t *testing.T) {
	svc, url := newTestService(t, "||x.example^\n")

	f, err := svc.CreateCustomFilter(context.Background(), CustomFilterSpec{CustomURL: url})
	if err != nil {
		t.Fatalf("CreateCustomFilter() error = %v", err)
	}
	if got := len(svc.EnabledFilters()); got != 1 {
		t.Fatalf("EnabledFilters() count = %d; want 1", got)
	}

	f.Enabled = false
	if err := svc.store.Save(f, "||x.example^\n"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := len(svc.EnabledFilters()); got != 0 {
		t.Fatalf("EnabledFilters() count after disable = %d; want 0", got)
	}
}
