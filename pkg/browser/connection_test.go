package browser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_AttachMode(t *testing.T) {
	handle := &fakeHandle{connected: true}
	driver := &fakeDriver{connectHandle: handle}
	m := newTestManager(driver)

	session, err := m.Acquire()
	require.NoError(t, err)

	assert.Equal(t, StateAttachedRemote, m.State())
	assert.Equal(t, 1, driver.connectCalls)
	assert.Zero(t, driver.launchCalls)

	// The browser had no contexts, so one was created
	require.Len(t, handle.contexts, 1)
	assert.Same(t, handle.contexts[0], session.Context)

	// An empty context gains a page during acquisition
	require.NotNil(t, session.Page)
	assert.Len(t, handle.contexts[0].Pages(), 1)
}

func TestAcquire_AttachReusesExistingContext(t *testing.T) {
	ctx := &fakeContext{}
	ctx.addPages(2)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	m := newTestManager(&fakeDriver{connectHandle: handle})

	session, err := m.Acquire()
	require.NoError(t, err)

	assert.Same(t, ctx, session.Context)
	assert.Len(t, ctx.Pages(), 2)
}

func TestAcquire_LaunchFallback(t *testing.T) {
	launched := &fakeHandle{connected: true, contexts: []*fakeContext{{}}}
	driver := &fakeDriver{
		connectErr:   errors.New("connection refused"),
		launchHandle: launched,
	}
	m := newTestManager(driver)

	session, err := m.Acquire()
	require.NoError(t, err)

	assert.Equal(t, StateLaunchedStandalone, m.State())
	assert.Equal(t, 1, driver.connectCalls)
	assert.Equal(t, 1, driver.launchCalls)
	assert.Equal(t, "/tmp/windlass-test-profile", driver.lastProfileDir)
	require.NotNil(t, session.Page)

	// Launched browsers must expose a debug port for future attach and
	// skip first-run UI
	args := strings.Join(driver.lastLaunchArgs, " ")
	assert.Contains(t, args, "--remote-debugging-port=9222")
	assert.Contains(t, args, "--no-first-run")
	assert.Contains(t, args, "--disable-sync")
}

func TestAcquire_ConnectionUnavailable(t *testing.T) {
	driver := &fakeDriver{
		connectErr: errors.New("connection refused"),
		launchErr:  errors.New("no executable"),
	}
	m := newTestManager(driver)

	_, err := m.Acquire()
	require.Error(t, err)

	var unavailable *ConnectionUnavailableError
	require.ErrorAs(t, err, &unavailable)

	// All three remediation options must be present
	msg := err.Error()
	assert.Contains(t, msg, "Install a system browser")
	assert.Contains(t, msg, "playwright install chromium")
	assert.Contains(t, msg, "--remote-debugging-port=9222")

	assert.Equal(t, StateDisconnected, m.State())
}

func TestAcquire_LaunchFailureWithFoundExecutable(t *testing.T) {
	// A browser was discovered but refused to start: that is an ordinary
	// launch failure, not the no-browser remediation error.
	driver := &fakeDriver{
		connectErr: errors.New("connection refused"),
		launchErr:  errors.New("exec format error"),
	}
	m := newTestManager(driver)
	m.findExec = func() string { return "/usr/bin/google-chrome" }

	_, err := m.Acquire()
	require.Error(t, err)

	var unavailable *ConnectionUnavailableError
	assert.False(t, errors.As(err, &unavailable))
	assert.Contains(t, err.Error(), "/usr/bin/google-chrome")
	assert.Contains(t, err.Error(), "exec format error")
}

func TestAcquire_ReusesHealthyHandle(t *testing.T) {
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{{}}}
	driver := &fakeDriver{connectHandle: handle}
	m := newTestManager(driver)

	first, err := m.Acquire()
	require.NoError(t, err)
	second, err := m.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 1, driver.connectCalls)
	assert.Same(t, first.Handle, second.Handle)
}

func TestAcquire_StaleHandleRerunsStrategy(t *testing.T) {
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{{}}}
	driver := &fakeDriver{connectHandle: handle}
	m := newTestManager(driver)

	disconnects := 0
	m.OnDisconnect(func() { disconnects++ })

	_, err := m.Acquire()
	require.NoError(t, err)
	assert.Equal(t, StateAttachedRemote, m.State())

	// Health check flips to disconnected between two acquisitions
	handle.connected = false
	fresh := &fakeHandle{connected: true, contexts: []*fakeContext{{}}}
	driver.connectHandle = fresh

	session, err := m.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 2, driver.connectCalls, "strategy must re-run from the top")
	assert.Same(t, Handle(fresh), session.Handle, "stale handle must not be reused")
	assert.Equal(t, 1, disconnects)
}

func TestSetActivePageIndex(t *testing.T) {
	ctx := &fakeContext{}
	ctx.addPages(3)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	m := newTestManager(&fakeDriver{connectHandle: handle})

	require.NoError(t, m.SetActivePageIndex(2))
	assert.Equal(t, 2, m.ActivePageIndex())

	page, err := m.ActivePage()
	require.NoError(t, err)
	assert.Same(t, Page(ctx.pages[2]), page)

	err = m.SetActivePageIndex(3)
	assert.Error(t, err)
	err = m.SetActivePageIndex(-1)
	assert.Error(t, err)
	assert.Equal(t, 2, m.ActivePageIndex(), "failed switch must not move the index")
}

func TestClosePage_ClampsActiveIndex(t *testing.T) {
	ctx := &fakeContext{}
	ctx.addPages(3)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	m := newTestManager(&fakeDriver{connectHandle: handle})

	require.NoError(t, m.SetActivePageIndex(2))
	require.NoError(t, m.ClosePage(2))

	assert.Equal(t, 1, m.ActivePageIndex(), "index must clamp to the last valid tab")

	page, err := m.ActivePage()
	require.NoError(t, err)
	assert.Same(t, Page(ctx.pages[1]), page)
}

func TestClosePage_BeforeActiveShiftsIndex(t *testing.T) {
	ctx := &fakeContext{}
	ctx.addPages(3)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	m := newTestManager(&fakeDriver{connectHandle: handle})

	require.NoError(t, m.SetActivePageIndex(2))
	require.NoError(t, m.ClosePage(0))

	// Same tab stays active even though its position changed
	page, err := m.ActivePage()
	require.NoError(t, err)
	assert.Same(t, Page(ctx.pages[2]), page)
	assert.Equal(t, 1, m.ActivePageIndex())
}

func TestOpenPage_EnforcesCap(t *testing.T) {
	ctx := &fakeContext{}
	ctx.addPages(1)
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{ctx}}
	driver := &fakeDriver{connectHandle: handle}
	m := NewManager(
		func() (Driver, error) { return driver, nil },
		Options{DebugPort: 9222, MaxPages: 2},
		testLogger(),
	)

	page, index, err := m.OpenPage()
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, 1, index)
	assert.Equal(t, 1, m.ActivePageIndex(), "new tab becomes active")

	_, _, err = m.OpenPage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tab cap")
}

func TestClose_BestEffort(t *testing.T) {
	handle := &fakeHandle{connected: true, contexts: []*fakeContext{{}}}
	m := newTestManager(&fakeDriver{connectHandle: handle})

	_, err := m.Acquire()
	require.NoError(t, err)

	m.Close()
	assert.True(t, handle.closed)
	assert.Equal(t, StateDisconnected, m.State())

	// Closing while disconnected is a no-op
	m.Close()
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name  string
		index int
		count int
		want  int
	}{
		{"in range", 1, 3, 1},
		{"too high", 5, 3, 2},
		{"negative", -1, 3, 0},
		{"empty", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clamp(tt.index, tt.count))
		})
	}
}
