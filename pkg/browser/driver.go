package browser

import (
	"github.com/playwright-community/playwright-go"
)

// Driver is the narrow surface the connection manager needs from a
// browser-automation backend. The production implementation wraps
// Playwright; tests substitute fakes.
type Driver interface {
	// ConnectRemote attaches to an already-running browser through its
	// remote debugging endpoint.
	ConnectRemote(endpoint string) (Handle, error)

	// Launch spawns a new browser process with an isolated profile
	// directory. An empty execPath selects the driver's bundled browser,
	// if one is installed.
	Launch(execPath string, args []string, profileDir string) (Handle, error)
}

// Handle is a live browser connection. Every backend must be able to
// answer whether the connection is still usable.
type Handle interface {
	// Connected reports whether the handle is still usable. A false
	// answer means the session must be discarded and reacquired.
	Connected() bool

	Contexts() []Context
	NewContext() (Context, error)
	Close() error
}

// Context is a single browsing context owning an ordered page list.
type Context interface {
	Pages() []Page
	NewPage() (Page, error)

	// NewCDPSession opens a low-level debug session bound to page.
	NewCDPSession(page Page) (CDPSession, error)
}

// Page is one browser tab. Implementations must return the same Page
// value for the same underlying tab across calls: the debug-session
// cache and the active-tab index both rely on identity comparison.
type Page interface {
	URL() string
	Close() error

	// Raw exposes the underlying driver page for interaction primitives
	// (click, fill, screenshot). Lifecycle code never touches it.
	Raw() playwright.Page
}

// CDPSession is a page-scoped channel for protocol-level commands.
type CDPSession interface {
	Send(method string, params map[string]interface{}) (interface{}, error)
	Detach() error
}
