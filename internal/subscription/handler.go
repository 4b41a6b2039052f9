package subscription

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/events"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/filters"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/journal"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/messaging"
	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// Refresher triggers a filtering engine rebuild. Requests coalesce and run
// in the background; callers never wait for completion.
type Refresher interface {
	Request()
}

// Handler implements the custom filter subscription messages.
type Handler struct {
	filters *filters.Service
	engine  Refresher
	journal *journal.Journal
	broker  *events.Broker
}

func NewHandler(filters *filters.Service, engine Refresher, jrnl *journal.Journal, broker *events.Broker) *Handler {
	return &Handler{filters: filters, engine: engine, journal: jrnl, broker: broker}
}

// LoadCustomFilterInfo describes the filter list at url without subscribing.
func (h *Handler) LoadCustomFilterInfo(ctx context.Context, url, title string) (filters.FilterInfo, error) {
	return h.filters.GetCustomFilterInfo(ctx, url, title)
}

// SubscribeToCustomFilter creates the filter with enabled=true, triggers a
// background engine refresh, and returns the stored filter. The refresh is
// not awaited: the response carries the new filter's metadata while the
// engine rebuilds behind it.
func (h *Handler) SubscribeToCustomFilter(ctx context.Context, spec filters.CustomFilterSpec) (filters.Filter, error) {
	f, err := h.filters.CreateCustomFilter(ctx, spec)
	if err != nil {
		return filters.Filter{}, err
	}

	h.engine.Request()
	h.journal.Record(events.KindFilterSubscribed, f.ID, f.CustomURL, f.Name)
	h.broker.Publish(events.NewEvent(events.KindFilterSubscribed, f))
	return f, nil
}

// RemoveAntiBannerFilter deletes a filter by ID and triggers an engine
// refresh so its rules stop applying.
func (h *Handler) RemoveAntiBannerFilter(ctx context.Context, filterID int) error {
	if err := h.filters.RemoveCustomFilter(ctx, filterID); err != nil {
		return err
	}

	h.engine.Request()
	h.journal.Record(events.KindFilterRemoved, filterID, "", "")
	h.broker.Publish(events.NewEvent(events.KindFilterRemoved, map[string]int{"filter_id": filterID}))
	return nil
}

// RegisterMessageHandlers binds the three subscription message kinds onto the
// dispatcher.
func (h *Handler) RegisterMessageHandlers(d *messaging.Dispatcher) error {
	if err := d.Register(messaging.MsgLoadCustomFilterInfo, h.handleLoadCustomFilterInfo); err != nil {
		return err
	}
	if err := d.Register(messaging.MsgSubscribeToCustomFilter, h.handleSubscribeToCustomFilter); err != nil {
		return err
	}
	return d.Register(messaging.MsgRemoveAntiBannerFilter, h.handleRemoveAntiBannerFilter)
}

func (h *Handler) handleLoadCustomFilterInfo(ctx context.Context, data json.RawMessage) (any, error) {
	var req struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, types.NewError(types.CodeValidation, "malformed LoadCustomFilterInfo payload", err)
	}
	return h.LoadCustomFilterInfo(ctx, req.URL, req.Title)
}

func (h *Handler) handleSubscribeToCustomFilter(ctx context.Context, data json.RawMessage) (any, error) {
	var req struct {
		Filter filters.CustomFilterSpec `json:"filter"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, types.NewError(types.CodeValidation, "malformed SubscribeToCustomFilter payload", err)
	}
	return h.SubscribeToCustomFilter(ctx, req.Filter)
}

func (h *Handler) handleRemoveAntiBannerFilter(ctx context.Context, data json.RawMessage) (any, error) {
	var req struct {
		FilterID int `json:"filterId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, types.NewError(types.CodeValidation, "malformed RemoveAntiBannerFilter payload", err)
	}
	if req.FilterID <= 0 {
		return nil, types.NewError(types.CodeValidation, "filterId must be positive", nil)
	}
	if err := h.RemoveAntiBannerFilter(ctx, req.FilterID); err != nil {
		return nil, err
	}
	slog.Debug("filter removal handled", "filter_id", req.FilterID)
	return map[string]bool{"removed": true}, nil
}
