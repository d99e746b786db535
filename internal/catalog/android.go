package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// AndroidPermission is one row of the Android permission catalog
type AndroidPermission struct {
	Permission      string // full identifier, e.g. android.permission.CAMERA
	Package         string // package that declares the permission
	Label           string // human-readable label
	Description     string
	ProtectionLevel string
}

// Abbrev returns the permission's short name (the last dot-segment).
// App-ops events identify operations by this short form.
func (p AndroidPermission) Abbrev() string {
	return Abbreviate(p.Permission)
}

// Abbreviate returns the last dot-segment of a permission identifier
func Abbreviate(permission string) string {
	if permission == "" {
		return ""
	}
	if i := strings.LastIndex(permission, "."); i >= 0 {
		return permission[i+1:]
	}
	return permission
}

// LoadAndroidPermissions reads the permission catalog CSV. The file must
// carry a header row naming at least the permission and label columns.
// Labels recorded as the literal "null" are replaced with the permission's
// short name so reports never show "null" to a user.
func LoadAndroidPermissions(path string) ([]AndroidPermission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open permission catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // catalog rows occasionally carry extra columns

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read permission catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("permission catalog %s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["permission"]; !ok {
		return nil, fmt.Errorf("permission catalog %s has no permission column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	perms := make([]AndroidPermission, 0, len(records)-1)
	for _, row := range records[1:] {
		p := AndroidPermission{
			Permission:      field(row, "permission"),
			Package:         field(row, "package"),
			Label:           field(row, "label"),
			Description:     field(row, "description"),
			ProtectionLevel: field(row, "protectionLevel"),
		}
		if p.Permission == "" {
			continue
		}
		if p.Label == "null" {
			p.Label = p.Abbrev()
		}
		perms = append(perms, p)
	}
	return perms, nil
}
