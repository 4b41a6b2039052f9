package tabs

import (
	"sync"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// BackgroundTabID is the reserved pseudo-tab identifier representing the
// service's own non-visible execution context. It is never registered and
// navigations attributed to it are never injected into.
const BackgroundTabID = "-1"

// TabInfo holds the metadata tracked for an attached browser tab.
type TabInfo struct {
	TabID       string `json:"tab_id"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	MainFrameID string `json:"main_frame_id,omitempty"`
}

// Registry maps tab identifiers to tab metadata. It is the source of truth
// for which tabs (and which top-level frames) the service currently tracks.
type Registry struct {
	tabs map[string]*TabInfo
	mu   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{tabs: make(map[string]*TabInfo)}
}

// Register adds or updates a tab entry. Registering the background pseudo-tab
// is rejected.
func (r *Registry) Register(tabID, url, title string) (*TabInfo, error) {
	if tabID == "" || tabID == BackgroundTabID {
		return nil, types.NewError(types.CodeValidation, "refusing to register background pseudo-tab", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.tabs[tabID]
	if !ok {
		info = &TabInfo{TabID: tabID}
		r.tabs[tabID] = info
	}
	info.URL = url
	if title != "" {
		info.Title = title
	}
	return info, nil
}

// SetMainFrame records the top-level document frame for a tracked tab.
func (r *Registry) SetMainFrame(tabID, frameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.tabs[tabID]; ok {
		info.MainFrameID = frameID
	}
}

func (r *Registry) Get(tabID string) (*TabInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.tabs[tabID]
	return info, ok
}

func (r *Registry) Remove(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tabs, tabID)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// List returns a snapshot of all tracked tabs.
func (r *Registry) List() []TabInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TabInfo, 0, len(r.tabs))
	for _, info := range r.tabs {
		out = append(out, *info)
	}
	return out
}
