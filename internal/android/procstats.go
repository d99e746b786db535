package android

import (
	"regexp"
	"strings"

	"github.com/nvoss/phonedump/internal/dumptree"
)

// Procstats lines do not follow the generic indentation grammar: records
// are keyed by dynamic process headers, and stat lines pack several values
// into one line. Two line shapes are recognized; everything else (headers
// before any app, totals, screen-state summaries) is dropped.
var (
	// e.g. "  * com.example.app / u0a83 / v42:"
	procstatsAppRe = regexp.MustCompile(`^\s*\* ([^ ]+) / ([^ ]+) / (v\d+):`)

	// e.g. "    TOTAL: 98% (120MB-130MB-140MB/110MB/0B over 53)"
	procstatsStatRe = regexp.MustCompile(`^\s+([\w\s]+): ([\d.]+%) \(([^/]+)/([^/]+)/([^)]+)\s+over\s+(\d+)\)`)
)

// parseProcstats extracts per-process records from a procstats section.
// The result maps process name to {uid, version, stats}, where each stat
// carries its percentage, min-avg-max ranges for ram/swap/zram, and the
// sample count.
func parseProcstats(lines []string) *dumptree.Node {
	apps := dumptree.NewMap()
	var current *dumptree.Node

	for _, line := range lines {
		if m := procstatsAppRe.FindStringSubmatch(line); m != nil {
			current = dumptree.NewMap()
			current.Set("uid", dumptree.NewLeaf(m[2]))
			current.Set("version", dumptree.NewLeaf(m[3]))
			current.Set("stats", dumptree.NewMap())
			apps.Set(m[1], current)
			continue
		}
		m := procstatsStatRe.FindStringSubmatch(line)
		if m == nil || current == nil {
			// Stat lines before any app header are orphans; drop them.
			continue
		}
		stat := dumptree.NewMap()
		stat.Set("percent", dumptree.NewLeaf(m[2]))
		stat.Set("ram", rangeList(m[3]))
		stat.Set("swap", rangeList(m[4]))
		stat.Set("zram", rangeList(m[5]))
		stat.Set("samples", dumptree.NewLeaf(m[6]))
		stats, _ := current.Get("stats")
		stats.Set(strings.TrimSpace(m[1]), stat)
	}
	return apps
}

// rangeList splits a "min-avg-max" memory figure into its parts
func rangeList(s string) *dumptree.Node {
	l := dumptree.NewList()
	for _, part := range strings.Split(s, "-") {
		l.Append(dumptree.NewLeaf(part))
	}
	return l
}
