// Package android turns a raw Android service dump into queryable records
// about installed packages, their permissions, and recent permission use.
//
// A dump is one text file produced on the device by an acquisition tool,
// structured as repeated "DUMP OF SERVICE <name>" / "DUMP OF SETTINGS
// <name>" headers with free text between them. This package segments the
// file into named sections, parses each section with the dumptree parser
// (or a format-specific parser where the generic indentation grammar does
// not fit), and caches the parsed document to a JSON sidecar so repeat
// queries skip re-parsing.
//
// # Opening a dump
//
//	dump, err := android.Open("scans/device1.txt", nil)
//	if err != nil {
//	    return err
//	}
//	for _, appID := range dump.AllApps() {
//	    info, _ := dump.Info(appID)
//	    ...
//	}
//
// # Degradation policy
//
// Format drift is absorbed locally: a malformed section keeps its raw tail
// under the "UNPARSED" key, an unknown appId yields an empty record, and
// missing sections yield the documented sentinels ("unknown" data usage,
// "0 (mAh)" battery use). Only a missing dump file or a relative-time
// string with no recognizable unit at all surface as errors, since those
// mean the upstream format changed in a way the pipeline cannot guess
// around.
//
// # Timestamps
//
// App-ops events carry "time ago" annotations, not absolute times. They
// are resolved against the document's reference time, which is frozen at
// first parse (reloads reuse the sidecar file's modification time), so a
// report generated tomorrow shows the same timestamps as one generated
// today.
package android
