package filters

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// CustomFilterSpec is the caller-supplied description of a filter to
// subscribe to.
type CustomFilterSpec struct {
	CustomURL string `json:"customUrl"`
	Name      string `json:"name"`
	Trusted   bool   `json:"trusted"`
}

// FilterInfo is the result of describing a candidate filter list before
// subscribing.
type FilterInfo struct {
	Filter        Filter `json:"filter"`
	AlreadyExists bool   `json:"already_exists,omitempty"`
}

// Service implements custom filter management on top of the loader and the
// disk store.
type Service struct {
	store  *Store
	loader *Loader
}

func NewService(store *Store, loader *Loader) *Service {
	return &Service{store: store, loader: loader}
}

// GetCustomFilterInfo downloads and describes the filter list at url without
// persisting anything. Download and parse errors propagate to the caller
// unmodified.
func (s *Service) GetCustomFilterInfo(ctx context.Context, url, title string) (FilterInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return FilterInfo{}, types.NewError(types.CodeValidation, "filter url is required", nil)
	}

	if existing, ok := s.store.GetByURL(url); ok {
		return FilterInfo{Filter: existing, AlreadyExists: true}, nil
	}

	body, err := s.loader.Download(ctx, url)
	if err != nil {
		return FilterInfo{}, err
	}

	meta := ParseMetadata(body)
	return FilterInfo{Filter: filterFromMeta(0, url, pickName(title, meta, url), false, meta)}, nil
}

// CreateCustomFilter downloads the list, persists it with enabled=true and
// returns the stored record. Subscribing to an already-present URL returns
// the existing filter.
func (s *Service) CreateCustomFilter(ctx context.Context, spec CustomFilterSpec) (Filter, error) {
	url := strings.TrimSpace(spec.CustomURL)
	if url == "" {
		return Filter{}, types.NewError(types.CodeValidation, "customUrl is required", nil)
	}

	if existing, ok := s.store.GetByURL(url); ok {
		slog.Debug("custom filter already subscribed", "filter_id", existing.ID, "url", url)
		return existing, nil
	}

	body, err := s.loader.Download(ctx, url)
	if err != nil {
		return Filter{}, err
	}

	meta := ParseMetadata(body)
	f := filterFromMeta(s.store.NextID(), url, pickName(spec.Name, meta, url), spec.Trusted, meta)
	if err := s.store.Save(f, body); err != nil {
		return Filter{}, err
	}

	slog.Info("custom filter created", "filter_id", f.ID, "url", url, "rules", f.RuleCount, "trusted", f.Trusted)
	return f, nil
}

// RemoveCustomFilter deletes a filter by ID. Returns nothing on success;
// a missing filter surfaces as FILTER_NOT_FOUND.
func (s *Service) RemoveCustomFilter(ctx context.Context, id int) error {
	_ = ctx
	if err := s.store.Delete(id); err != nil {
		return err
	}
	slog.Info("custom filter removed", "filter_id", id)
	return nil
}

// GetFilter returns a stored filter by ID.
func (s *Service) GetFilter(id int) (Filter, error) {
	f, ok := s.store.Get(id)
	if !ok {
		return Filter{}, types.NewError(types.CodeFilterNotFound, "filter not found", nil)
	}
	return f, nil
}

// ListFilters returns all stored filters.
func (s *Service) ListFilters() []Filter {
	return s.store.List()
}

// EnabledFilters returns the stored filters that are currently enabled.
func (s *Service) EnabledFilters() []Filter {
	all := s.store.List()
	out := all[:0]
	for _, f := range all {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// Rules returns the raw rule text of a stored filter.
func (s *Service) Rules(id int) (string, error) {
	return s.store.Rules(id)
}

func filterFromMeta(id int, url, name string, trusted bool, meta Metadata) Filter {
	return Filter{
		ID:          id,
		Name:        name,
		CustomURL:   url,
		Trusted:     trusted,
		Enabled:     true,
		Description: meta.Description,
		Version:     meta.Version,
		Homepage:    meta.Homepage,
		ExpiresSec:  meta.ExpiresSec,
		RuleCount:   meta.RuleCount,
		LastUpdated: time.Now().UTC(),
	}
}

// pickName prefers the caller-supplied title, then the list's own header
// title, then the subscription URL.
func pickName(title string, meta Metadata, url string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if meta.Title != "" {
		return meta.Title
	}
	return url
}
