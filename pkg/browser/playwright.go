package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver implements Driver on top of the Playwright runtime.
type PlaywrightDriver struct {
	pw       *playwright.Playwright
	headless bool
}

// NewPlaywrightDriver installs the Playwright driver (not the bundled
// browsers) and starts the runtime. Driver output is redirected away
// from stdout, which carries the wire protocol.
func NewPlaywrightDriver(headless bool, driverOutput io.Writer) (*PlaywrightDriver, error) {
	if driverOutput == nil {
		driverOutput = io.Discard
	}

	opts := &playwright.RunOptions{
		Verbose:             false,
		Stdout:              driverOutput,
		Stderr:              driverOutput,
		SkipInstallBrowsers: true,
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright driver: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &PlaywrightDriver{pw: pw, headless: headless}, nil
}

// ConnectRemote attaches to a browser exposing a CDP endpoint.
func (d *PlaywrightDriver) ConnectRemote(endpoint string) (Handle, error) {
	b, err := d.pw.Chromium.ConnectOverCDP(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	return newAttachedHandle(b), nil
}

// Launch spawns a browser with a persistent, profile-backed context.
// The returned handle doubles as the context: a persistent launch owns
// exactly one browsing context for its whole lifetime.
func (d *PlaywrightDriver) Launch(execPath string, args []string, profileDir string) (Handle, error) {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(d.headless),
		Args:     args,
	}
	if execPath != "" {
		opts.ExecutablePath = playwright.String(execPath)
	}

	ctx, err := d.pw.Chromium.LaunchPersistentContext(profileDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	h := &launchedHandle{
		raw: ctx,
		ctx: newWrappedContext(ctx),
	}
	ctx.OnClose(func(playwright.BrowserContext) {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
	})
	return h, nil
}

// Stop shuts down the Playwright runtime.
func (d *PlaywrightDriver) Stop() error {
	return d.pw.Stop()
}

// attachedHandle wraps a browser reached over CDP.
type attachedHandle struct {
	browser playwright.Browser

	mu       sync.Mutex
	contexts map[playwright.BrowserContext]*wrappedContext
}

func newAttachedHandle(b playwright.Browser) *attachedHandle {
	return &attachedHandle{
		browser:  b,
		contexts: make(map[playwright.BrowserContext]*wrappedContext),
	}
}

func (h *attachedHandle) Connected() bool {
	return h.browser.IsConnected()
}

func (h *attachedHandle) Contexts() []Context {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw := h.browser.Contexts()
	out := make([]Context, 0, len(raw))
	for _, c := range raw {
		out = append(out, h.wrapLocked(c))
	}
	return out
}

func (h *attachedHandle) NewContext() (Context, error) {
	c, err := h.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browsing context: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wrapLocked(c), nil
}

func (h *attachedHandle) Close() error {
	return h.browser.Close()
}

// wrapLocked returns a stable wrapper per underlying context. Callers
// must hold h.mu.
func (h *attachedHandle) wrapLocked(c playwright.BrowserContext) *wrappedContext {
	if w, ok := h.contexts[c]; ok {
		return w
	}
	w := newWrappedContext(c)
	h.contexts[c] = w
	return w
}

// launchedHandle wraps a persistent-context launch. There is no
// separate browser object to health-check, so liveness is tracked
// through the context close event.
type launchedHandle struct {
	raw playwright.BrowserContext
	ctx *wrappedContext

	mu     sync.Mutex
	closed bool
}

func (h *launchedHandle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed
}

func (h *launchedHandle) Contexts() []Context {
	return []Context{h.ctx}
}

func (h *launchedHandle) NewContext() (Context, error) {
	return nil, fmt.Errorf("a persistent launch owns a single browsing context")
}

func (h *launchedHandle) Close() error {
	return h.raw.Close()
}

// wrappedContext adapts playwright.BrowserContext. Page wrappers are
// cached so identical tabs compare identical across Pages() calls.
type wrappedContext struct {
	ctx playwright.BrowserContext

	mu    sync.Mutex
	pages map[playwright.Page]*wrappedPage
}

func newWrappedContext(c playwright.BrowserContext) *wrappedContext {
	return &wrappedContext{
		ctx:   c,
		pages: make(map[playwright.Page]*wrappedPage),
	}
}

func (c *wrappedContext) Pages() []Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw := c.ctx.Pages()
	out := make([]Page, 0, len(raw))
	live := make(map[playwright.Page]bool, len(raw))
	for _, p := range raw {
		live[p] = true
		out = append(out, c.wrapLocked(p))
	}

	// Drop wrappers for tabs that no longer exist
	for p := range c.pages {
		if !live[p] {
			delete(c.pages, p)
		}
	}
	return out
}

func (c *wrappedContext) NewPage() (Page, error) {
	p, err := c.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wrapLocked(p), nil
}

func (c *wrappedContext) NewCDPSession(page Page) (CDPSession, error) {
	s, err := c.ctx.NewCDPSession(page.Raw())
	if err != nil {
		return nil, fmt.Errorf("failed to open CDP session: %w", err)
	}
	return &wrappedCDPSession{session: s}, nil
}

func (c *wrappedContext) wrapLocked(p playwright.Page) *wrappedPage {
	if w, ok := c.pages[p]; ok {
		return w
	}
	w := &wrappedPage{page: p}
	c.pages[p] = w
	return w
}

type wrappedPage struct {
	page playwright.Page
}

func (p *wrappedPage) URL() string {
	return p.page.URL()
}

func (p *wrappedPage) Close() error {
	return p.page.Close()
}

func (p *wrappedPage) Raw() playwright.Page {
	return p.page
}

type wrappedCDPSession struct {
	session playwright.CDPSession
}

func (s *wrappedCDPSession) Send(method string, params map[string]interface{}) (interface{}, error) {
	return s.session.Send(method, params)
}

func (s *wrappedCDPSession) Detach() error {
	return s.session.Detach()
}
