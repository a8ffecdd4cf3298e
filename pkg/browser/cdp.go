package browser

import (
	"fmt"
	"sync"

	"github.com/windlass-sh/windlass/pkg/logging"
)

// CDPManager caches a single debug-protocol session scoped to the
// currently active page. The cache is keyed by page identity, never by
// URL: two tabs showing the same address are still different tabs.
type CDPManager struct {
	mu   sync.Mutex
	conn *Manager
	log  *logging.Logger

	session CDPSession
	page    Page
}

// NewCDPManager creates a CDP session manager backed by conn.
func NewCDPManager(conn *Manager, log *logging.Logger) *CDPManager {
	return &CDPManager{conn: conn, log: log}
}

// Session returns a debug session bound to the active page. The cached
// session is reused while the active page is unchanged; on a page
// switch the stale session is detached best-effort and a new one is
// created. At most one live session exists at any time.
func (c *CDPManager) Session() (CDPSession, error) {
	session, err := c.conn.Acquire()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.page == session.Page {
		return c.session, nil
	}

	if c.session != nil {
		// Detach failures are expected when the page already went away.
		if err := c.session.Detach(); err != nil {
			c.log.Debugf("stale CDP session detach failed: %v", err)
		}
	}

	cdp, err := session.Context.NewCDPSession(session.Page)
	if err != nil {
		c.session = nil
		c.page = nil
		return nil, fmt.Errorf("failed to create CDP session: %w", err)
	}

	c.session = cdp
	c.page = session.Page
	return cdp, nil
}

// Reset drops the cached session without attempting detach. Used when
// the underlying connection is already known to be gone, where a detach
// call could only fail.
func (c *CDPManager) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.page = nil
}
