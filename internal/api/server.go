package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/events"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/filters"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/messaging"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

type Service interface {
	DispatchMessage(ctx context.Context, msg messaging.Message) (any, error)
	MessageKinds(ctx context.Context) ([]messaging.MessageType, error)
	LoadCustomFilterInfo(ctx context.Context, url, title string) (filters.FilterInfo, error)
	SubscribeToCustomFilter(ctx context.Context, spec filters.CustomFilterSpec) (filters.Filter, error)
	RemoveFilter(ctx context.Context, filterID int) error
	ListFilters(ctx context.Context) ([]filters.Filter, error)
	GetFilter(ctx context.Context, filterID int) (filters.Filter, error)
	GetFilterRules(ctx context.Context, filterID int) (string, error)
	OpenAssistant(ctx context.Context) (string, error)
	ListTabs(ctx context.Context) ([]tabs.TabInfo, error)
}

func NewServer(svc Service, broker *events.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("AdGuard Background Service API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	router.Get("/api/events", events.SSEHandler(broker))

	registerMessageHandlers(api, svc)
	registerFilterHandlers(api, svc)
	registerMiscHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeFilterNotFound, types.CodeTabNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeEvalTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case types.CodeDownloadFailed, types.CodeCDPUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
