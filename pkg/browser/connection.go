package browser

import (
	"fmt"
	"sync"

	"github.com/windlass-sh/windlass/pkg/logging"
)

// State describes the connection lifecycle. The only transitions are
// Disconnected -> AttachedRemote or Disconnected -> LaunchedStandalone
// on a successful acquisition, and back to Disconnected whenever a
// health check fails.
type State int

const (
	StateDisconnected State = iota
	StateAttachedRemote
	StateLaunchedStandalone
)

func (s State) String() string {
	switch s {
	case StateAttachedRemote:
		return "attached-remote"
	case StateLaunchedStandalone:
		return "launched-standalone"
	default:
		return "disconnected"
	}
}

// Session is the working browser triple handed to tool handlers: a live
// handle, its browsing context, and the page at the active tab index.
type Session struct {
	Handle  Handle
	Context Context
	Page    Page
}

// Options configures a connection Manager.
type Options struct {
	// DebugPort is used both as the attach endpoint port and as the
	// remote debugging port passed to launched browsers.
	DebugPort int

	// ProfileDir is the isolated profile directory for launched browsers.
	ProfileDir string

	// MaxPages caps the number of simultaneously open tabs.
	MaxPages int
}

// Manager owns browser acquisition and the active tab index. It is the
// single source of truth for "which page is currently active"; the
// debug-session cache and the tab tools both read it.
//
// Acquisition is three-tiered: reuse the cached handle when its health
// check passes, otherwise attach to an already-running browser over its
// debugging endpoint, otherwise launch a browser with an isolated
// profile. Connection loss is never surfaced directly; the manager
// resets and the next acquisition runs the strategy from the top.
type Manager struct {
	mu sync.Mutex

	newDriver func() (Driver, error)
	findExec  func() string
	opts      Options
	log       *logging.Logger

	driver     Driver
	handle     Handle
	ctx        Context
	state      State
	activePage int

	// onDisconnect runs whenever a cached handle is discarded, so
	// dependents holding page-scoped state can drop it without trying
	// to talk to the dead connection.
	onDisconnect func()
}

// NewManager creates a connection manager. The driver is constructed
// lazily on the first acquisition so that starting the process never
// pays for a browser nobody asked for.
func NewManager(newDriver func() (Driver, error), opts Options, log *logging.Logger) *Manager {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 16
	}
	return &Manager{
		newDriver: newDriver,
		findExec:  findExecutable,
		opts:      opts,
		log:       log,
		state:     StateDisconnected,
	}
}

// OnDisconnect registers a callback invoked whenever the cached handle
// is discarded after a failed health check or an explicit Close.
func (m *Manager) OnDisconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnect = fn
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Acquire returns a working session, connecting or launching a browser
// if needed. A stale cached handle is discarded and the full strategy
// re-runs; failure of every tier yields a ConnectionUnavailableError
// carrying remediation instructions.
func (m *Manager) Acquire() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireLocked()
}

func (m *Manager) acquireLocked() (*Session, error) {
	if m.handle != nil {
		if m.handle.Connected() {
			return m.sessionLocked()
		}
		m.log.Warnf("stale session detected (%s): health check failed, reacquiring", m.state)
		m.resetLocked()
	}

	driver, err := m.driverLocked()
	if err != nil {
		return nil, err
	}

	// Tier two: attach to an externally running browser. Failure here is
	// expected when nothing is listening on the debug port.
	endpoint := fmt.Sprintf("http://127.0.0.1:%d", m.opts.DebugPort)
	attached, attachErr := driver.ConnectRemote(endpoint)
	if attachErr == nil {
		ctx, err := firstOrNewContext(attached)
		if err != nil {
			_ = attached.Close()
			return nil, err
		}
		m.handle = attached
		m.ctx = ctx
		m.state = StateAttachedRemote
		m.log.Infof("attached to running browser at %s", endpoint)
		return m.sessionLocked()
	}
	m.log.Debugf("no attach target at %s: %v", endpoint, attachErr)

	// Tier three: launch. An empty executable path falls through to the
	// driver's bundled browser, if installed.
	execPath := m.findExec()
	handle, err := driver.Launch(execPath, launchArgs(m.opts.DebugPort), m.opts.ProfileDir)
	if err != nil {
		if execPath == "" {
			// No system browser was found and the bundled fallback did
			// not work either: the remediation error, not a bare trace.
			return nil, &ConnectionUnavailableError{Err: err}
		}
		return nil, fmt.Errorf("failed to launch %s: %w", execPath, err)
	}

	ctxs := handle.Contexts()
	if len(ctxs) == 0 {
		_ = handle.Close()
		return nil, fmt.Errorf("launched browser exposed no browsing context")
	}

	m.handle = handle
	m.ctx = ctxs[0]
	m.state = StateLaunchedStandalone
	if execPath != "" {
		m.log.Infof("launched browser %s with profile %s", execPath, m.opts.ProfileDir)
	} else {
		m.log.Infof("launched bundled browser with profile %s", m.opts.ProfileDir)
	}
	return m.sessionLocked()
}

// sessionLocked finalizes an acquisition: the context must hold at
// least one page and the active index must resolve to a valid page.
func (m *Manager) sessionLocked() (*Session, error) {
	pages := m.ctx.Pages()
	if len(pages) == 0 {
		page, err := m.ctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open initial page: %w", err)
		}
		pages = []Page{page}
	}

	m.activePage = clamp(m.activePage, len(pages))
	return &Session{Handle: m.handle, Context: m.ctx, Page: pages[m.activePage]}, nil
}

func (m *Manager) driverLocked() (Driver, error) {
	if m.driver != nil {
		return m.driver, nil
	}
	driver, err := m.newDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser driver: %w", err)
	}
	m.driver = driver
	return driver, nil
}

func (m *Manager) resetLocked() {
	m.handle = nil
	m.ctx = nil
	m.state = StateDisconnected
	if m.onDisconnect != nil {
		m.onDisconnect()
	}
}

// ActivePage resolves the page at the active tab index, acquiring a
// session if needed.
func (m *Manager) ActivePage() (Page, error) {
	session, err := m.Acquire()
	if err != nil {
		return nil, err
	}
	return session.Page, nil
}

// ActivePageIndex returns the active tab index.
func (m *Manager) ActivePageIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activePage
}

// SetActivePageIndex switches the active tab. The index must address an
// existing page.
func (m *Manager) SetActivePageIndex(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.acquireLocked(); err != nil {
		return err
	}

	pages := m.ctx.Pages()
	if index < 0 || index >= len(pages) {
		return fmt.Errorf("tab index %d out of range (have %d tabs)", index, len(pages))
	}
	m.activePage = index
	return nil
}

// Pages returns the ordered page list of the current context.
func (m *Manager) Pages() ([]Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.acquireLocked(); err != nil {
		return nil, err
	}
	return m.ctx.Pages(), nil
}

// OpenPage opens a new tab, makes it active, and returns it with its
// index. The configured tab cap is enforced here.
func (m *Manager) OpenPage() (Page, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.acquireLocked(); err != nil {
		return nil, 0, err
	}

	pages := m.ctx.Pages()
	if len(pages) >= m.opts.MaxPages {
		return nil, 0, fmt.Errorf("tab cap reached (%d tabs open); close a tab first", m.opts.MaxPages)
	}

	page, err := m.ctx.NewPage()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open tab: %w", err)
	}
	m.activePage = len(pages)
	return page, m.activePage, nil
}

// ClosePage closes the tab at index. The active index is clamped so it
// keeps resolving to a valid page.
func (m *Manager) ClosePage(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.acquireLocked(); err != nil {
		return err
	}

	pages := m.ctx.Pages()
	if index < 0 || index >= len(pages) {
		return fmt.Errorf("tab index %d out of range (have %d tabs)", index, len(pages))
	}

	if err := pages[index].Close(); err != nil {
		return fmt.Errorf("failed to close tab %d: %w", index, err)
	}

	if m.activePage >= index && m.activePage > 0 {
		m.activePage--
	}
	m.activePage = clamp(m.activePage, len(pages)-1)
	return nil
}

// Close releases the owned browser handle, discarding close failures.
// Used on process termination and never during normal dispatch.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return
	}
	if err := m.handle.Close(); err != nil {
		m.log.Warnf("browser close failed: %v", err)
	}
	m.resetLocked()
}

// firstOrNewContext selects an attached browser's first browsing
// context, creating one when the browser has none.
func firstOrNewContext(handle Handle) (Context, error) {
	if ctxs := handle.Contexts(); len(ctxs) > 0 {
		return ctxs[0], nil
	}
	ctx, err := handle.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browsing context: %w", err)
	}
	return ctx, nil
}

// launchArgs returns the fixed isolation and stability flags passed to
// every launched browser.
func launchArgs(debugPort int) []string {
	return []string{
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-sync",
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-renderer-backgrounding",
		fmt.Sprintf("--remote-debugging-port=%d", debugPort),
	}
}

// clamp forces index into [0, count). A non-positive count yields 0.
func clamp(index, count int) int {
	if index < 0 || count <= 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}
