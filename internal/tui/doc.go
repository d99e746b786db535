// Package tui implements the interactive installed-app browser.
//
// The browser is a Bubble Tea program with two panels: a filterable list
// of every app installed on the dumped device, and a scrollable report
// view for the selected app. Offstore installs are flagged in red in the
// list. Android and iOS dumps plug in through the Source interface, so
// the browser itself is agnostic of where the records came from.
//
// # Usage Example
//
//	src := tui.NewAndroidSource(dump, perms)
//	if err := tui.Run(src); err != nil {
//	    log.Fatal(err)
//	}
package tui
