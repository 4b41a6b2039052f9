package background

import (
	"context"
	"strings"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/assistant"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/filters"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/messaging"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/subscription"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/tabs"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// Service is the background facade the HTTP API talks to. It fronts the
// message dispatcher, the filter store, the tab registry and the assistant
// launcher.
type Service struct {
	dispatcher *messaging.Dispatcher
	handler    *subscription.Handler
	filters    *filters.Service
	registry   *tabs.Registry
	assistant  *assistant.Launcher
}

func NewService(dispatcher *messaging.Dispatcher, handler *subscription.Handler, filterSvc *filters.Service, registry *tabs.Registry, launcher *assistant.Launcher) *Service {
	return &Service{
		dispatcher: dispatcher,
		handler:    handler,
		filters:    filterSvc,
		registry:   registry,
		assistant:  launcher,
	}
}

// DispatchMessage routes a raw message envelope through the dispatch table.
func (s *Service) DispatchMessage(ctx context.Context, msg messaging.Message) (any, error) {
	if strings.TrimSpace(string(msg.Type)) == "" {
		return nil, types.NewError(types.CodeValidation, "message type is required", nil)
	}
	return s.dispatcher.Dispatch(ctx, msg)
}

// MessageKinds lists the message types the dispatcher accepts.
func (s *Service) MessageKinds(ctx context.Context) ([]messaging.MessageType, error) {
	_ = ctx
	return s.dispatcher.Kinds(), nil
}

func (s *Service) LoadCustomFilterInfo(ctx context.Context, url, title string) (filters.FilterInfo, error) {
	return s.handler.LoadCustomFilterInfo(ctx, strings.TrimSpace(url), strings.TrimSpace(title))
}

func (s *Service) SubscribeToCustomFilter(ctx context.Context, spec filters.CustomFilterSpec) (filters.Filter, error) {
	return s.handler.SubscribeToCustomFilter(ctx, spec)
}

func (s *Service) RemoveFilter(ctx context.Context, filterID int) error {
	if filterID <= 0 {
		return types.NewError(types.CodeValidation, "filter_id must be positive", nil)
	}
	return s.handler.RemoveAntiBannerFilter(ctx, filterID)
}

func (s *Service) ListFilters(ctx context.Context) ([]filters.Filter, error) {
	_ = ctx
	return s.filters.ListFilters(), nil
}

func (s *Service) GetFilter(ctx context.Context, filterID int) (filters.Filter, error) {
	_ = ctx
	if filterID <= 0 {
		return filters.Filter{}, types.NewError(types.CodeValidation, "filter_id must be positive", nil)
	}
	return s.filters.GetFilter(filterID)
}

func (s *Service) GetFilterRules(ctx context.Context, filterID int) (string, error) {
	_ = ctx
	if filterID <= 0 {
		return "", types.NewError(types.CodeValidation, "filter_id must be positive", nil)
	}
	return s.filters.Rules(filterID)
}

// OpenAssistant attaches the element-picking assistant to the active tab and
// returns its tab ID.
func (s *Service) OpenAssistant(ctx context.Context) (string, error) {
	return s.assistant.Open(ctx)
}

func (s *Service) ListTabs(ctx context.Context) ([]tabs.TabInfo, error) {
	_ = ctx
	return s.registry.List(), nil
}
