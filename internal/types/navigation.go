package types

// NavigationDetails describes a committed navigation observed in a browser
// frame. Mirrors the fields the CDP Page.frameNavigated event carries.
type NavigationDetails struct {
	TabID         string
	FrameID       string
	ParentFrameID string
	URL           string
}

// IsMainFrame reports whether the navigation happened in the top-level
// document frame rather than a nested iframe.
func (d NavigationDetails) IsMainFrame() bool {
	return d.ParentFrameID == ""
}
