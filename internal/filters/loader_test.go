package filters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

func TestDownloadFetchesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("||ads.example^\n"))
	}))
	defer srv.Close()

	body, err := NewLoader(srv.Client()).Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if body != "||ads.example^\n" {
		t.Fatalf("Download() = %q; want served body", body)
	}
}

func TestDownloadRejectsNonHTTPSchemes(t *testing.T) {
	l := NewLoader(nil)
	for _, raw := range []string{"file:///etc/hosts", "ftp://example.org/list.txt", "chrome://settings"} {
		_, err := l.Download(context.Background(), raw)
		var coded *types.CodedError
		if !errors.As(err, &coded) || coded.Code != types.CodeValidation {
			t.Errorf("Download(%q) error = %v; want VALIDATION", raw, err)
		}
	}
}

func TestDownloadNon200IsDownloadFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.Client()).Download(context.Background(), srv.URL)
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeDownloadFailed {
		t.Fatalf("Download() error = %v; want DOWNLOAD_FAILED", err)
	}
}

func TestDownloadEnforcesSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	l := NewLoader(srv.Client())
	l.maxBytes = 512

	_, err := l.Download(context.Background(), srv.URL)
	var coded *types.CodedError
	if !errors.As(err, &coded) || coded.Code != types.CodeDownloadFailed {
		t.Fatalf("Download() error = %v; want DOWNLOAD_FAILED for oversized body", err)
	}
}
