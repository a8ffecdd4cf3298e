package browser

import (
	"github.com/playwright-community/playwright-go"

	"github.com/windlass-sh/windlass/pkg/logging"
)

// Test doubles for the driver surface. Behavior is scripted per test
// through the exported-ish fields.

type fakeDriver struct {
	connectHandle *fakeHandle
	connectErr    error
	launchHandle  *fakeHandle
	launchErr     error

	connectCalls   int
	launchCalls    int
	lastLaunchArgs []string
	lastProfileDir string
}

func (d *fakeDriver) ConnectRemote(endpoint string) (Handle, error) {
	d.connectCalls++
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	return d.connectHandle, nil
}

func (d *fakeDriver) Launch(execPath string, args []string, profileDir string) (Handle, error) {
	d.launchCalls++
	d.lastLaunchArgs = args
	d.lastProfileDir = profileDir
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	return d.launchHandle, nil
}

type fakeHandle struct {
	connected bool
	contexts  []*fakeContext
	closed    bool
}

func (h *fakeHandle) Connected() bool {
	return h.connected
}

func (h *fakeHandle) Contexts() []Context {
	out := make([]Context, len(h.contexts))
	for i, c := range h.contexts {
		out[i] = c
	}
	return out
}

func (h *fakeHandle) NewContext() (Context, error) {
	c := &fakeContext{}
	h.contexts = append(h.contexts, c)
	return c, nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	h.connected = false
	return nil
}

type fakeContext struct {
	pages      []*fakePage
	cdpErr     error
	cdpCreated int
}

func (c *fakeContext) Pages() []Page {
	out := make([]Page, 0, len(c.pages))
	for _, p := range c.pages {
		if !p.closed {
			out = append(out, p)
		}
	}
	return out
}

func (c *fakeContext) NewPage() (Page, error) {
	p := &fakePage{url: "about:blank"}
	c.pages = append(c.pages, p)
	return p, nil
}

func (c *fakeContext) NewCDPSession(page Page) (CDPSession, error) {
	if c.cdpErr != nil {
		return nil, c.cdpErr
	}
	c.cdpCreated++
	return &fakeCDPSession{page: page}, nil
}

func (c *fakeContext) addPages(n int) []*fakePage {
	for i := 0; i < n; i++ {
		c.pages = append(c.pages, &fakePage{url: "about:blank"})
	}
	return c.pages
}

type fakePage struct {
	url    string
	closed bool
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

func (p *fakePage) Raw() playwright.Page {
	return nil
}

type fakeCDPSession struct {
	page     Page
	sent     []string
	detached bool
}

func (s *fakeCDPSession) Send(method string, params map[string]interface{}) (interface{}, error) {
	s.sent = append(s.sent, method)
	return map[string]interface{}{}, nil
}

func (s *fakeCDPSession) Detach() error {
	s.detached = true
	return nil
}

func testLogger() *logging.Logger {
	log, _ := logging.NewLogger("browser-test")
	return log
}

func newTestManager(d *fakeDriver) *Manager {
	m := NewManager(
		func() (Driver, error) { return d, nil },
		Options{DebugPort: 9222, ProfileDir: "/tmp/windlass-test-profile", MaxPages: 16},
		testLogger(),
	)
	// Pin discovery so tests behave the same on hosts with and without
	// an installed browser.
	m.findExec = func() string { return "" }
	return m
}
