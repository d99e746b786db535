// Package report renders parsed phone-dump records for the terminal.
//
// The renderer produces two registers of output from the same content:
// styled lipgloss boxes with a color code for recency (orange markers for
// permissions with a recent app-ops event, gray for idle ones, red for
// flagged apps) when stdout is a terminal, and plain indented text when
// it is piped or redirected. Detection uses golang.org/x/term, so
// `phonedump report ... | less` never leaks ANSI sequences.
//
// # Usage Example
//
//	r := report.NewRenderer()
//	rep, err := dump.PermissionReportFor(appID, perms)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(r.AndroidReport(rep))
package report
