package android

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/logging"
)

// unknownField fills event columns on catalog rows that had no matching
// recent use
const unknownField = "Unknown permission"

// PermissionRow joins one catalog permission held by the app with its
// recent-use record, when one exists. Rows without a recent use carry
// "Unknown permission" in the event columns.
type PermissionRow struct {
	catalog.AndroidPermission

	// PermissionAbbrv is the short name the app-ops section uses for
	// this permission
	PermissionAbbrv string

	AppID     string
	Op        string
	Mode      string
	Timestamp string
	TimeAgo   string
}

// ReportStats summarizes one permission report alongside the package
// metadata a reviewer wants on the same screen
type ReportStats struct {
	// TotalPermissions counts every permission the app holds
	TotalPermissions int

	// HFPermissions counts the ones with a human-friendly catalog entry
	HFPermissions int

	// RecentPermissions counts app-ops events, catalogued or not
	RecentPermissions int

	// NotHFOps counts recent events whose op has no catalog entry
	NotHFOps int

	// NotHFPermissions counts held permissions absent from the catalog
	NotHFPermissions int

	VersionCode      string
	VersionName      string
	FirstInstallTime string
	LastUpdateTime   string
}

// PermissionReport is the full permission picture for one app
type PermissionReport struct {
	AppID string

	// HumanFriendly has one row per (catalogued permission, recent use)
	// pair, plus one placeholder row per catalogued permission that was
	// never used recently
	HumanFriendly []PermissionRow

	// UnknownOps are recent events whose operation matches none of the
	// app's catalogued permissions
	UnknownOps []PermissionEvent

	// UncataloguedPermissions are held permissions with no catalog row
	UncataloguedPermissions []string

	Stats ReportStats
}

// PermissionReportFor builds the permission report for one app by joining
// its held permissions against the catalog and its app-ops events. An
// appId missing from the dump yields an empty report rather than an
// error, so a batch report over a stale app list still completes.
func (d *Dump) PermissionReportFor(appID string, perms []catalog.AndroidPermission) (*PermissionReport, error) {
	report := &PermissionReport{AppID: appID}

	info, err := d.Info(appID)
	if err != nil {
		if errors.Is(err, ErrUnknownApp) || errors.Is(err, ErrNoPackageSection) {
			logging.Warn("No package record for permission report",
				zap.String("appId", appID),
				zap.Error(err),
			)
			return report, nil
		}
		return nil, err
	}

	held := make([]string, 0,
		len(info.InstallPermissions)+len(info.DeclaredPermissions)+len(info.RuntimePermissions))
	held = append(held, info.InstallPermissions...)
	held = append(held, info.DeclaredPermissions...)
	held = append(held, info.RuntimePermissions...)
	heldSet := make(map[string]bool, len(held))
	for _, p := range held {
		heldSet[p] = true
	}

	recent, err := d.RecentPermissions(appID)
	if err != nil {
		return nil, err
	}
	recentByOp := make(map[string][]PermissionEvent)
	for _, ev := range recent {
		recentByOp[ev.Op] = append(recentByOp[ev.Op], ev)
	}

	catalogued := make(map[string]bool)
	abbrevs := make(map[string]bool)
	for _, perm := range perms {
		if !heldSet[perm.Permission] {
			continue
		}
		catalogued[perm.Permission] = true
		abbrev := perm.Abbrev()
		abbrevs[abbrev] = true
		report.Stats.HFPermissions++

		base := PermissionRow{
			AndroidPermission: perm,
			PermissionAbbrv:   abbrev,
			AppID:             appID,
			Op:                unknownField,
			Mode:              unknownField,
			Timestamp:         unknownField,
			TimeAgo:           unknownField,
		}
		events := recentByOp[abbrev]
		if len(events) == 0 {
			report.HumanFriendly = append(report.HumanFriendly, base)
			continue
		}
		for _, ev := range events {
			row := base
			row.Op = ev.Op
			row.Mode = ev.Mode
			row.Timestamp = ev.Timestamp
			row.TimeAgo = ev.TimeAgo
			report.HumanFriendly = append(report.HumanFriendly, row)
		}
	}

	for _, ev := range recent {
		if !abbrevs[ev.Op] {
			report.UnknownOps = append(report.UnknownOps, ev)
		}
	}
	seen := make(map[string]bool)
	for _, p := range held {
		if !catalogued[p] && !seen[p] {
			seen[p] = true
			report.UncataloguedPermissions = append(report.UncataloguedPermissions, p)
		}
	}

	report.Stats.TotalPermissions = len(held)
	report.Stats.RecentPermissions = len(recent)
	report.Stats.NotHFOps = len(report.UnknownOps)
	report.Stats.NotHFPermissions = len(report.UncataloguedPermissions)
	report.Stats.VersionCode = info.VersionCode
	report.Stats.VersionName = info.VersionName
	report.Stats.FirstInstallTime = info.FirstInstallTime
	report.Stats.LastUpdateTime = info.LastUpdateTime
	return report, nil
}
