package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCDPFixture(t *testing.T, pageCount int) (*Manager, *CDPManager, *fakeContext, *fakeHandle) {
	t.Helper()

	ctx := &fakeContext{}
	ctx.addPages(pageCount)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	m := newTestManager(&fakeDriver{connectHandle: handle})
	cdp := NewCDPManager(m, testLogger())
	return m, cdp, ctx, handle
}

func TestCDPSession_CachedWhilePageUnchanged(t *testing.T) {
	_, cdp, ctx, _ := newCDPFixture(t, 2)

	first, err := cdp.Session()
	require.NoError(t, err)
	second, err := cdp.Session()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, ctx.cdpCreated, "no new session without a page change")
}

func TestCDPSession_RecreatedOnPageSwitch(t *testing.T) {
	m, cdp, ctx, _ := newCDPFixture(t, 2)

	first, err := cdp.Session()
	require.NoError(t, err)

	require.NoError(t, m.SetActivePageIndex(1))

	second, err := cdp.Session()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, ctx.cdpCreated)
	assert.True(t, first.(*fakeCDPSession).detached, "stale session must be detached")
}

func TestCDPSession_BoundByIdentityNotURL(t *testing.T) {
	m, cdp, ctx, _ := newCDPFixture(t, 2)

	// Both tabs show the same URL; only identity may distinguish them
	ctx.pages[0].url = "https://example.com"
	ctx.pages[1].url = "https://example.com"

	first, err := cdp.Session()
	require.NoError(t, err)

	require.NoError(t, m.SetActivePageIndex(1))

	second, err := cdp.Session()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCDPReset_SkipsDetach(t *testing.T) {
	_, cdp, ctx, _ := newCDPFixture(t, 1)

	first, err := cdp.Session()
	require.NoError(t, err)

	cdp.Reset()

	second, err := cdp.Session()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.False(t, first.(*fakeCDPSession).detached, "reset must not attempt detach")
	assert.Equal(t, 2, ctx.cdpCreated)
}

func TestCDPSession_CreationFailure(t *testing.T) {
	_, cdp, ctx, _ := newCDPFixture(t, 1)
	ctx.cdpErr = errors.New("target crashed")

	_, err := cdp.Session()
	require.Error(t, err)

	// A later success must work from a clean slate
	ctx.cdpErr = nil
	session, err := cdp.Session()
	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestCDPReset_WiredToDisconnect(t *testing.T) {
	m, cdp, ctx, handle := newCDPFixture(t, 1)
	m.OnDisconnect(cdp.Reset)

	first, err := cdp.Session()
	require.NoError(t, err)

	// Connection dies; the disconnect hook must clear the CDP cache so
	// no detach is attempted against the dead connection.
	handle.connected = false
	fresh := &fakeContext{}
	fresh.addPages(1)

	driver := &fakeDriver{connectHandle: &fakeHandle{connected: true, contexts: []*fakeContext{fresh}}}
	m.mu.Lock()
	m.driver = driver
	m.mu.Unlock()

	second, err := cdp.Session()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.False(t, first.(*fakeCDPSession).detached)
	assert.Equal(t, 1, ctx.cdpCreated, "old context sees no further sessions")
	assert.Equal(t, 1, fresh.cdpCreated)
}
