package report

import (
	"fmt"
	"strings"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/discovery"
	"github.com/nvoss/phonedump/internal/ios"
)

// Renderer turns parsed records into terminal output. With Styled set it
// renders lipgloss boxes and colors; without it the same content comes
// out as plain indented text, safe to pipe or redirect.
type Renderer struct {
	// Styled enables colors and borders
	Styled bool

	// Width is the target content width
	Width int
}

// NewRenderer creates a renderer matched to stdout: styled at the
// terminal width when stdout is a terminal, plain otherwise.
func NewRenderer() *Renderer {
	if IsTerminal() {
		return &Renderer{Styled: true, Width: GetTerminalWidth()}
	}
	return &Renderer{Styled: false, Width: MinTerminalWidth}
}

// AndroidReport renders the full permission report for one Android app
func (r *Renderer) AndroidReport(rep *android.PermissionReport) string {
	var b strings.Builder

	stats := [][2]string{
		{"Version", versionLine(rep.Stats.VersionName, rep.Stats.VersionCode)},
		{"First installed", rep.Stats.FirstInstallTime},
		{"Last updated", rep.Stats.LastUpdateTime},
		{"Permissions", fmt.Sprintf("%d total, %d recognized", rep.Stats.TotalPermissions, rep.Stats.HFPermissions)},
		{"Recent events", fmt.Sprintf("%d", rep.Stats.RecentPermissions)},
	}

	b.WriteString(r.header(rep.AppID, "Permission report"))
	b.WriteString("\n")
	for _, kv := range stats {
		b.WriteString(r.statLine(kv[0], kv[1]))
		b.WriteString("\n")
	}

	if len(rep.HumanFriendly) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionTitle("Permissions"))
		b.WriteString("\n")
		for _, row := range rep.HumanFriendly {
			b.WriteString(r.permissionRow(row))
			b.WriteString("\n")
		}
	}

	if len(rep.UnknownOps) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionTitle("Operations without a catalog entry"))
		b.WriteString("\n")
		for _, ev := range rep.UnknownOps {
			line := fmt.Sprintf("%s %s (%s, %s ago)", RecentMarker, ev.Op, ModeLabel(ev.Mode), ev.TimeAgo)
			b.WriteString(r.listItem(line, true))
			b.WriteString("\n")
		}
	}

	if len(rep.UncataloguedPermissions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionTitle("Other permissions held"))
		b.WriteString("\n")
		for _, p := range rep.UncataloguedPermissions {
			b.WriteString(r.listItem(IdleMarker+" "+p, false))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// AndroidAppInfo renders the metadata block for one Android app
func (r *Renderer) AndroidAppInfo(info *android.AppInfo) string {
	var b strings.Builder
	b.WriteString(r.header(info.AppID, "App details"))
	b.WriteString("\n")

	rows := [][2]string{
		{"Version", versionLine(info.VersionName, info.VersionCode)},
		{"User id", info.UserID},
		{"First installed", info.FirstInstallTime},
		{"Last updated", info.LastUpdateTime},
		{"Data used", info.DataUsed},
		{"Background data", info.BackgroundDataAllowed},
		{"Battery usage", info.BatteryUsage},
	}
	for _, kv := range rows {
		b.WriteString(r.statLine(kv[0], kv[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// AppList renders a titled list of app ids. Ids present in the flagged
// set render with the flagged marker and color.
func (r *Renderer) AppList(title string, apps []string, flagged map[string]bool) string {
	var b strings.Builder
	b.WriteString(r.sectionTitle(fmt.Sprintf("%s (%d)", title, len(apps))))
	b.WriteString("\n")
	for _, app := range apps {
		if flagged[app] {
			line := FlaggedMarker + " " + app
			if r.Styled {
				line = FlaggedStyle.Render(line)
			}
			b.WriteString("  " + line + "\n")
			continue
		}
		b.WriteString("  " + r.plainOr(ListItemStyle.Render(IdleMarker+" "+app), IdleMarker+" "+app) + "\n")
	}
	return b.String()
}

// IOSApp renders the permission picture for one iOS app
func (r *Renderer) IOSApp(deviceName string, info *ios.AppInfo) string {
	var b strings.Builder
	title := info.AppID
	if info.Title != "" {
		title = fmt.Sprintf("%s (%s)", info.Title, info.AppID)
	}
	b.WriteString(r.header(title, deviceName))
	b.WriteString("\n")
	b.WriteString(r.statLine("Version", info.Version))
	b.WriteString("\n")

	if len(info.Permissions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionTitle("Permissions"))
		b.WriteString("\n")
		for _, p := range info.Permissions {
			line := fmt.Sprintf("%s %s - %s", RecentMarker, p.Label, p.Reason)
			b.WriteString(r.listItem(line, true))
			b.WriteString("\n")
		}
	}

	for _, advice := range []string{info.InstallDateAdvice, info.BatteryUsageAdvice, info.DataUsageAdvice} {
		if advice == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(r.plainOr(NoteStyle.Render(advice), advice))
	}
	b.WriteString("\n")
	return b.String()
}

// Devices renders the result of an mDNS scan
func (r *Renderer) Devices(devices []*discovery.Device) string {
	var b strings.Builder
	b.WriteString(r.sectionTitle(fmt.Sprintf("Discovered iOS devices (%d)", len(devices))))
	b.WriteString("\n")
	if len(devices) == 0 {
		none := "No devices found. WiFi sync must be enabled and the device on the same network."
		b.WriteString("  " + r.plainOr(NoteStyle.Render(none), none) + "\n")
		return b.String()
	}
	for _, d := range devices {
		line := fmt.Sprintf("%s %s  %s:%d  (MAC %s)", RecentMarker, d.Name(), d.IP, d.Port, d.MAC)
		b.WriteString(r.listItem(line, false))
		b.WriteString("\n")
	}
	return b.String()
}

// ModeLabel translates a numeric app-ops mode into a word
func ModeLabel(mode string) string {
	switch mode {
	case "0":
		return "allowed"
	case "1":
		return "ignored"
	case "2":
		return "denied"
	case "3":
		return "default"
	default:
		return mode
	}
}

func versionLine(name, code string) string {
	switch {
	case name == "" && code == "":
		return "unknown"
	case code == "":
		return name
	case name == "":
		return code
	default:
		return fmt.Sprintf("%s (%s)", name, code)
	}
}

func (r *Renderer) header(title, subtitle string) string {
	if !r.Styled {
		return title + "\n" + subtitle + "\n"
	}
	content := TitleStyle.Render(title) + "\n" + SubtitleStyle.Render(subtitle)
	return HeaderBoxStyle(r.Width).Render(content) + "\n"
}

func (r *Renderer) sectionTitle(title string) string {
	if !r.Styled {
		return title + ":"
	}
	return TitleStyle.Render(title)
}

func (r *Renderer) statLine(key, value string) string {
	if value == "" {
		value = "unknown"
	}
	if !r.Styled {
		return fmt.Sprintf("  %-22s %s", key+":", value)
	}
	return "  " + StatKeyStyle.Render(key+":") + StatValueStyle.Render(value)
}

// permissionRow renders one joined catalog row. Rows with a recorded
// recent use carry the event; rows without one read "never used
// recently".
func (r *Renderer) permissionRow(row android.PermissionRow) string {
	label := row.Label
	if label == "" {
		label = row.PermissionAbbrv
	}

	used := row.TimeAgo != "" && !strings.EqualFold(row.Op, "Unknown permission")
	var detail string
	if used {
		detail = fmt.Sprintf("%s, %s ago", ModeLabel(row.Mode), row.TimeAgo)
	} else {
		detail = "never used recently"
	}

	if !r.Styled {
		marker := IdleMarker
		if used {
			marker = RecentMarker
		}
		return fmt.Sprintf("  %s %s (%s)", marker, label, detail)
	}

	if used {
		return "  " + RecentUseStyle.Render(RecentMarker) + " " +
			PermissionLabelStyle.Render(label) + " " +
			RecentUseStyle.Render("("+detail+")")
	}
	return "  " + NeverUsedStyle.Render(IdleMarker+" "+label+" ("+detail+")")
}

func (r *Renderer) listItem(line string, highlight bool) string {
	if !r.Styled {
		return "  " + line
	}
	if highlight {
		return "  " + RecentUseStyle.Render(line)
	}
	return "  " + ListItemStyle.Render(line)
}

// plainOr returns styled when the renderer is styled, plain otherwise
func (r *Renderer) plainOr(styled, plain string) string {
	if r.Styled {
		return styled
	}
	return plain
}
