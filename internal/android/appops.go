package android

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/dumptree"
	"github.com/nvoss/phonedump/internal/logging"
)

// appOpRe matches one app-ops usage line, e.g.
// "CAMERA: mode=0; time=+2h7m13s715ms ago"
var appOpRe = regexp.MustCompile(`^(.*?):\s*mode=(\d+);?\s*time=(.*?)\s*ago;?`)

// PermissionEvent is one recent permission use recorded by app-ops
type PermissionEvent struct {
	AppID string

	// Op is the operation's short name, e.g. "COARSE_LOCATION"
	Op string

	// Mode is the numeric app-ops mode (0 allow, 1 ignore, 2 deny)
	Mode string

	// Timestamp is the event time resolved against the dump's frozen
	// reference time, formatted with the configured layout
	Timestamp string

	// TimeAgo is the raw relative-time string from the dump
	TimeAgo string
}

// RecentPermissions lists the app's recent permission uses from the
// app-ops section, most recent first.
//
// An app with no app-ops record yields an empty slice. A relative-time
// string that cannot be parsed at all is an error: it means the app-ops
// format drifted and every timestamp in the report would be wrong.
func (d *Dump) RecentPermissions(appID string) ([]PermissionEvent, error) {
	pkgs := d.packages()
	pkg, ok := pkgs[appID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, appID)
	}

	entries := d.appOpsEntries(appID, uidUsername(pkg.UserID))
	if len(entries) == 0 {
		return nil, nil
	}

	var events []PermissionEvent
	ages := make(map[string]time.Duration)
	for _, entry := range entries {
		m := appOpRe.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		timeAgo := strings.TrimSpace(m[3])
		age, err := ParseTimeAgo(timeAgo)
		if err != nil {
			return nil, fmt.Errorf("app-ops entry for %s: %w", appID, err)
		}
		events = append(events, PermissionEvent{
			AppID:     appID,
			Op:        strings.TrimSpace(m[1]),
			Mode:      strings.TrimSpace(m[2]),
			Timestamp: d.parsedAt.Add(-age).Format(d.timestampLayout()),
			TimeAgo:   timeAgo,
		})
		ages[timeAgo] = age
	}
	sort.SliceStable(events, func(i, j int) bool {
		return ages[events[i].TimeAgo] < ages[events[j].TimeAgo]
	})
	return events, nil
}

// appOpsEntries locates the app's usage lines inside the app-ops section.
// Older dumps key uid blocks at the top level; newer ones nest them under
// a "Current AppOps Service state" header. Inside the uid block the app's
// own sub-block is found by substring, since its header varies ("Package
// com.x:", "com.x (uid mode ...)").
func (d *Dump) appOpsEntries(appID, uidu string) []string {
	section := d.Section("appops")
	if section == nil {
		return nil
	}
	uidKey := "Uid " + uidu
	block := section.Child(uidKey)
	if block == nil || block.Empty() {
		if state := section.Child("Current AppOps Service state"); state != nil {
			block = state.Child(uidKey)
		}
	}
	if block == nil || block.Kind() != dumptree.KindMap {
		return nil
	}

	var ops *dumptree.Node
	for _, k := range block.Keys() {
		if strings.Contains(k, appID) {
			ops, _ = block.Get(k)
			break
		}
	}
	if ops == nil {
		return nil
	}

	entries := entryStrings(ops)
	for _, e := range entries {
		if strings.Contains(e, "No operations.") {
			logging.Debug("App has no recorded operations",
				zap.String("appId", appID),
			)
			return nil
		}
	}
	return entries
}

// entryStrings flattens an ops block to its raw lines. Blocks whose lines
// all had empty bodies collapse to lists; mixed blocks stay maps whose
// keys carry the line text.
func entryStrings(n *dumptree.Node) []string {
	switch n.Kind() {
	case dumptree.KindLeaf:
		return []string{n.Value()}
	case dumptree.KindList:
		var out []string
		for _, e := range n.Elems() {
			out = append(out, entryStrings(e)...)
		}
		return out
	default:
		return n.Keys()
	}
}
