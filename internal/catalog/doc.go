// Package catalog loads and maintains the permission catalogs used to turn
// raw permission identifiers into human-readable labels.
//
// Two catalogs exist:
//
//   - Android: a static CSV shipped with the tool, one row per permission
//     with its label, description, and protection level. Rows whose label
//     is the literal string "null" fall back to the identifier's last
//     dot-segment.
//
//   - iOS: a key-value store mapping TCC service keys (for example
//     "kTCCServiceCamera") to display labels. This catalog is
//     self-extending: a key seen for the first time is added with a
//     default label and persisted, so the catalog grows over the lifetime
//     of the tool.
//
// The iOS store takes its persistence backend as an interface. Production
// code uses the JSON file backend; tests inject the in-memory backend. All
// store mutation goes through a single mutex, so two device scans sharing
// a catalog file cannot interleave their read-modify-write cycles.
package catalog
