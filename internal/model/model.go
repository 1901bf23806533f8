package model

import "time"

// Category classifies a local customization file by which Xcode feature it
// configures. It is derived from the filename, never stored.
type Category int

const (
	// CategoryUnknown marks a filename that matches none of the configured
	// categories. Such files are dropped silently wherever encountered.
	CategoryUnknown Category = iota
	CategoryColorTheme
	CategoryKeyBinding
	CategoryTemplateMacros
)

// String returns a short name for logging.
func (c Category) String() string {
	switch c {
	case CategoryColorTheme:
		return "color-theme"
	case CategoryKeyBinding:
		return "key-binding"
	case CategoryTemplateMacros:
		return "template-macros"
	default:
		return "unknown"
	}
}

// FileRecord is one local customization file. Name is the bare filename
// (no directory); it doubles as the key in the remote document.
type FileRecord struct {
	Name       string
	Content    string
	ModifiedAt time.Time
}

// Identity is the active session credential pair. It is binary: either both
// fields are set (logged in) or both are empty (logged out). The zero value
// is the logged-out sentinel.
type Identity struct {
	Username    string
	AccessToken string
}

// LoggedIn reports whether the identity represents an active session.
func (i Identity) LoggedIn() bool {
	return i.Username != "" && i.AccessToken != ""
}
