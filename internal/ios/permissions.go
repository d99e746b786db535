package ios

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/nvoss/phonedump/internal/catalog"
)

// Entitlement keys whose arrays grant TCC services to a bundle. The
// overridable variant lists grants the user can adjust in Settings.
const (
	tccAllowKey       = "com.apple.private.tcc.allow"
	tccOverridableKey = "com.apple.private.tcc.allow.overridable"
)

// grantedBySystem is the reason reported when the bundle metadata carries
// no developer-provided explanation for a permission
const grantedBySystem = "permission granted by system"

// Permission is one resolved app permission: the catalog label and the
// developer's stated reason for requesting it
type Permission struct {
	Label  string
	Reason string
}

// Permissions resolves the app's permission grants: the union of its two
// TCC entitlement arrays and any top-level metadata key already known to
// the catalog. Unseen TCC keys extend the catalog as a side effect.
func (d *Dump) Permissions(appID string) ([]Permission, error) {
	app := d.find(appID)
	if app == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, appID)
	}
	return d.permissionsOf(app)
}

func (d *Dump) permissionsOf(app map[string]any) ([]Permission, error) {
	keys := map[string]bool{}
	for _, k := range entitlementList(app, tccAllowKey) {
		keys[k] = true
	}
	for _, k := range entitlementList(app, tccOverridableKey) {
		keys[k] = true
	}
	// Third-party apps carry their grants as top-level keys rather than
	// entitlement arrays; only keys the catalog already knows qualify.
	for _, k := range d.perms.Keys() {
		if _, ok := app[k]; ok {
			keys[k] = true
		}
	}

	ordered := make([]string, 0, len(keys))
	for k := range keys {
		if k != "" {
			ordered = append(ordered, k)
		}
	}
	sort.Strings(ordered)

	perms := make([]Permission, 0, len(ordered))
	for _, key := range ordered {
		label, err := d.perms.GetOrInsert(key, catalog.DefaultTCCLabel)
		if err != nil {
			return nil, err
		}
		reason := grantedBySystem
		if r, ok := app[key].(string); ok && r != "" {
			reason = r
		}
		perms = append(perms, Permission{
			Label:  capitalize(label),
			Reason: reason,
		})
	}
	return perms, nil
}

// entitlementList reads one string array out of the bundle's Entitlements
// block; a missing block or a non-array value reads as empty
func entitlementList(app map[string]any, key string) []string {
	ent, _ := app["Entitlements"].(map[string]any)
	raw, _ := ent[key].([]any)
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
