package browser

import (
	"fmt"
)

// ConnectionUnavailableError is returned when no attach target exists
// and no usable browser executable could be found or launched. The
// message carries concrete remediation options because the typical
// caller is an automation agent, not a human with a stack trace.
type ConnectionUnavailableError struct {
	Err error
}

func (e *ConnectionUnavailableError) Error() string {
	msg := "no browser available. To fix this, do one of the following:\n" +
		"  1. Install a system browser (Google Chrome, Chromium, or Microsoft Edge)\n" +
		"  2. Install the bundled fallback browser: npx playwright install chromium\n" +
		"  3. Start your browser with --remote-debugging-port=9222 so windlass can attach to it"
	if e.Err != nil {
		return fmt.Sprintf("%s\nlast error: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnectionUnavailableError) Unwrap() error {
	return e.Err
}
