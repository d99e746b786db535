package android

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/dumptree"
	"github.com/nvoss/phonedump/internal/logging"
)

// dataUsage resolves total traffic and the background-data flag for one
// package from the network-stats section's BPF map tables. Both values
// degrade to "unknown" when the section, the tables, or the uid row are
// absent.
func (d *Dump) dataUsage(pkg *Package) (dataUsed, backgroundAllowed string) {
	dataUsed, backgroundAllowed = "unknown", "unknown"

	section := d.Section("net_stats")
	if section == nil || section.Empty() {
		return
	}
	uid := normalizeUID(pkg.UserID)
	if uid == "" {
		return
	}
	bpf := section.Child("BPF map content")
	if bpf == nil {
		return
	}

	allowed := false
	if counterSets := bpf.Child("mUidCounterSetMap"); counterSets != nil {
		for _, row := range counterSets.Elems() {
			if strings.HasPrefix(rowText(row), uid) {
				allowed = true
				break
			}
		}
	}

	stats := bpf.Child("mAppUidStatsMap")
	if stats == nil {
		return
	}
	for _, row := range stats.Elems() {
		text := rowText(row)
		if !strings.HasPrefix(text, uid) {
			continue
		}
		// uid rxBytes rxPackets txBytes txPackets
		fields := strings.Fields(text)
		if len(fields) != 5 {
			logging.Error("Unexpected net_stats row shape",
				zap.String("appId", pkg.AppID),
				zap.String("uid", uid),
				zap.String("row", text),
			)
			return
		}
		rxBytes, rxErr := strconv.ParseInt(fields[1], 10, 64)
		txBytes, txErr := strconv.ParseInt(fields[3], 10, 64)
		if rxErr != nil || txErr != nil {
			logging.Error("Unexpected net_stats row shape",
				zap.String("appId", pkg.AppID),
				zap.String("uid", uid),
				zap.String("row", text),
			)
			return
		}
		dataUsed = fmt.Sprintf("%.2f MB", float64(rxBytes+txBytes)/(1024*1024))
		if allowed {
			backgroundAllowed = "yes"
		} else {
			backgroundAllowed = "not allowed"
		}
		return
	}
	return
}

// batteryUsage resolves the app's estimated power draw since last charge.
// Battery stats key per-uid rows by the "u0aNN" username form, which is
// recovered from procstats; any gap along the way degrades to the
// documented "0 (mAh)" default.
func (d *Dump) batteryUsage(pkg *Package) string {
	uidu := d.procstatsUID(pkg.AppID)
	if uidu == "" {
		uidu = "Not Found"
	}

	pattern := "^batterystats$//^Statistics since last charge$//^Estimated power use .*//^Uid " +
		regexp.QuoteMeta(uidu) + ":.*"
	matched, err := dumptree.MatchKeys(d.doc, pattern)
	if err != nil {
		logging.Error("Battery stats lookup failed",
			zap.String("appId", pkg.AppID),
			zap.Error(err),
		)
		return "0 (mAh)"
	}
	leaves := dumptree.Leaves(matched)
	if len(leaves) == 0 {
		return "0 (mAh)"
	}
	// e.g. "Uid u0a83: 2.66 ( cpu=1.96 wake=0.70 )"
	parts := strings.SplitN(leaves[0], ":", 2)
	if len(parts) < 2 {
		return "0 (mAh)"
	}
	return strings.TrimSpace(parts[1])
}

// procstatsUID finds the "u0aNN" uid for an appId from the procstats
// records. App processes ("com.example.app:push") share the main process
// prefix, and all report the same uid; the last record wins.
func (d *Dump) procstatsUID(appID string) string {
	pattern := "^procstats$//^" + regexp.QuoteMeta(appID) + ".*//^uid$"
	matched, err := dumptree.MatchKeys(d.doc, pattern)
	if err != nil {
		return ""
	}
	uid := ""
	for _, node := range dumptree.Extract(d.doc, matched) {
		for _, leaf := range dumptree.Leaves(node) {
			uid = leaf
		}
	}
	return uid
}

// normalizeUID maps a package userId to the numeric uid used by the BPF
// tables. Dumps report it either numerically ("10083") or in username
// form ("u0a83").
func normalizeUID(userID string) string {
	if strings.HasPrefix(userID, "u0a") {
		return "10" + strings.TrimPrefix(userID, "u0a")
	}
	return userID
}

// uidUsername converts a numeric uid to the "u0aNN" username form used by
// app-ops and battery stats. Uids at or below the app range start are
// system uids and keep their numeric form.
func uidUsername(userID string) string {
	uid, err := strconv.Atoi(strings.TrimSpace(userID))
	if err != nil {
		return userID
	}
	if uid > 10000 {
		return "u0a" + strconv.Itoa(uid-10000)
	}
	return strconv.Itoa(uid)
}

// rowText flattens one BPF table row to the text it was parsed from. Rows
// land either as plain leaves or as single-pair maps when the line carried
// an "=".
func rowText(row *dumptree.Node) string {
	switch row.Kind() {
	case dumptree.KindLeaf:
		return row.Value()
	case dumptree.KindMap:
		for _, k := range row.Keys() {
			child, _ := row.Get(k)
			if child.Kind() == dumptree.KindLeaf {
				return child.Value()
			}
			return k
		}
	}
	return ""
}
