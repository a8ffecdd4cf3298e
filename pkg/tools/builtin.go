package tools

// coreProviders returns the fixed always-on tool set. The catalog is
// deliberately small at steady state: every tool costs the calling
// agent context window on each listing.
func coreProviders() []Provider {
	return []Provider{
		func(d *Deps) []Tool { return []Tool{NewNavigateTool(d.Conn)} },
		func(d *Deps) []Tool { return []Tool{NewInteractTool(d.Conn)} },
		func(d *Deps) []Tool { return []Tool{NewReadTool(d.Conn)} },
		func(d *Deps) []Tool { return []Tool{NewInspectTool(d.Conn)} },
	}
}

// builtinModules is the known-module table. New entries here become
// selectable through the module-management tool without further wiring.
func builtinModules() []ModuleDef {
	return []ModuleDef{
		{
			Name:        "tabs",
			Description: "Open, switch, list, and close browser tabs",
			Providers: []Provider{
				func(d *Deps) []Tool {
					return []Tool{
						NewTabListTool(d.Conn),
						NewTabOpenTool(d.Conn),
						NewTabSwitchTool(d.Conn),
						NewTabCloseTool(d.Conn),
					}
				},
			},
		},
		{
			Name:        "media",
			Description: "Capture screenshots, export PDFs, and read raw page HTML",
			Providers: []Provider{
				func(d *Deps) []Tool {
					return []Tool{
						NewScreenshotTool(d.Conn),
						NewExportPDFTool(d.Conn),
					}
				},
				// Optional extension of the core read file: raw HTML
				// output is only available while media is active.
				func(d *Deps) []Tool { return []Tool{NewReadHTMLTool(d.Conn)} },
			},
		},
		{
			Name:        "network",
			Description: "Throttle network conditions, inject headers, and clear the browser cache",
			Providers: []Provider{
				func(d *Deps) []Tool {
					return []Tool{
						NewNetworkThrottleTool(d.CDP),
						NewNetworkSetHeadersTool(d.CDP),
						NewNetworkClearCacheTool(d.CDP),
					}
				},
			},
		},
	}
}
