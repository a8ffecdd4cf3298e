package browser

import (
	"os"
	"os/exec"
	"runtime"
)

// findExecutable locates an installed Chromium-family browser. Known
// installation paths for the current platform are checked first, then
// the command names are resolved through PATH. An empty result means no
// system browser was found.
func findExecutable() string {
	for _, path := range executablePaths(runtime.GOOS) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	for _, name := range executableNames() {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// executablePaths returns well-known absolute installation paths.
func executablePaths(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
			`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/usr/bin/microsoft-edge",
		}
	}
}

// executableNames returns command names to resolve through PATH.
func executableNames() []string {
	return []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
		"chrome",
		"msedge",
	}
}
