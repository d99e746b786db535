package android

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/dumptree"
	"github.com/nvoss/phonedump/internal/logging"
)

const (
	serviceMarker  = "DUMP OF SERVICE "
	settingsMarker = "DUMP OF SETTINGS "
)

// DefaultApprovedInstallers are installer package names that count as
// official store channels when classifying offstore apps. The carrier and
// OEM entries cover preloads that report their own installer.
var DefaultApprovedInstallers = []string{
	"com.android.vending",
	"com.dti.att",         // AT&T preload installer
	"com.facebook.system", // Facebook system installer on some OEM builds
}

// DefaultTimestampLayout formats resolved permission-usage timestamps
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// Options adjusts how a dump is opened and queried. The zero value (or a
// nil pointer) uses the defaults above.
type Options struct {
	// ApprovedInstallers overrides DefaultApprovedInstallers when non-nil
	ApprovedInstallers []string

	// TimestampLayout overrides DefaultTimestampLayout when non-empty
	TimestampLayout string

	// OnSection, when set, is invoked after each section is parsed with
	// the section name and its line count. Used to stream parse progress.
	OnSection func(section string, lines int)
}

// Dump is one parsed Android device snapshot. All queries are computed on
// demand from the parsed document; the document itself is owned by the
// Dump and cached to a sidecar JSON file next to the source text.
type Dump struct {
	path     string
	doc      *dumptree.Node
	parsedAt time.Time
	opts     Options

	// lazily built package index
	pkgs     map[string]*Package
	pkgOrder []string
}

// Open parses (or reloads from cache) the dump at path. The path may name
// either the raw ".txt" dump or any sibling extension; the sidecar cache
// lives at the same base name with a ".json" extension.
//
// A sidecar that fails to deserialize is deleted and the parse is retried
// from the raw text exactly once; a second failure propagates.
func Open(path string, opts *Options) (*Dump, error) {
	d := &Dump{path: path}
	if opts != nil {
		d.opts = *opts
	}
	if err := d.load(false); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dump) textPath() string {
	base := strings.TrimSuffix(d.path, filepath.Ext(d.path))
	return base + ".txt"
}

func (d *Dump) sidecarPath() string {
	base := strings.TrimSuffix(d.path, filepath.Ext(d.path))
	return base + ".json"
}

func (d *Dump) load(failedBefore bool) error {
	sidecar := d.sidecarPath()
	if info, err := os.Stat(sidecar); err == nil {
		logging.Debug("Loading cached dump document", zap.String("path", sidecar))
		data, err := os.ReadFile(sidecar)
		if err == nil {
			doc := &dumptree.Node{}
			if err := json.Unmarshal(data, doc); err == nil {
				d.doc = doc
				// The reference time for "time ago" resolution is frozen
				// at first parse; the sidecar's mtime carries it across
				// process restarts.
				d.parsedAt = info.ModTime()
				return nil
			}
			logging.Error("Dump cache is corrupt, rebuilding",
				zap.String("path", sidecar),
				zap.Error(err),
			)
		}
		if failedBefore {
			return fmt.Errorf("dump cache %s unreadable after rebuild", sidecar)
		}
		if err := os.Remove(sidecar); err != nil {
			return fmt.Errorf("failed to discard corrupt cache %s: %w", sidecar, err)
		}
		return d.load(true)
	}

	doc, err := parseDumpFile(d.textPath(), d.opts.OnSection)
	if err != nil {
		return err
	}
	d.doc = doc
	d.parsedAt = time.Now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize dump document: %w", err)
	}
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		// The document is still usable in memory; the next run just
		// pays the parse cost again.
		logging.Warn("Failed to write dump cache",
			zap.String("path", sidecar),
			zap.Error(err),
		)
	}
	return nil
}

// Document returns the full parsed document: a map from section name to
// that section's tree.
func (d *Dump) Document() *dumptree.Node {
	return d.doc
}

// Sections returns the section names in document order
func (d *Dump) Sections() []string {
	return d.doc.Keys()
}

// Section returns one named section, or nil when absent
func (d *Dump) Section(name string) *dumptree.Node {
	return d.doc.Child(name)
}

// Path returns the path the dump was opened with
func (d *Dump) Path() string {
	return d.path
}

// ParsedAt returns the document's frozen reference time
func (d *Dump) ParsedAt() time.Time {
	return d.parsedAt
}

func (d *Dump) timestampLayout() string {
	if d.opts.TimestampLayout != "" {
		return d.opts.TimestampLayout
	}
	return DefaultTimestampLayout
}

func (d *Dump) approvedInstallers() map[string]bool {
	list := d.opts.ApprovedInstallers
	if list == nil {
		list = DefaultApprovedInstallers
	}
	set := make(map[string]bool, len(list))
	for _, installer := range list {
		set[installer] = true
	}
	return set
}

// parseDumpFile splits the raw dump into named sections and parses each
// one. Sections named in the custom-parse set get their format-specific
// parser; everything else goes through the robust indentation parser.
func parseDumpFile(path string, onSection func(string, int)) (*dumptree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer f.Close()

	doc := dumptree.NewMap()
	service := ""
	var lines []string

	flush := func() {
		if service == "" {
			return
		}
		doc.Set(service, parseSection(service, lines))
		logging.Debug("Section parsed",
			zap.String("section", service),
			zap.Int("lines", len(lines)),
		)
		if onSection != nil {
			onSection(service, len(lines))
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "----") {
			// Separator rows between sections carry no content.
			continue
		}
		if strings.HasPrefix(line, serviceMarker) || strings.HasPrefix(line, settingsMarker) {
			flush()
			service = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, serviceMarker), settingsMarker))
			if service == "netstats detail" {
				// The header text for this section varies across Android
				// versions; keep one stable internal name.
				service = "net_stats"
			}
			lines = nil
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dump file: %w", err)
	}
	if len(lines) > 0 {
		if existing, ok := doc.Get(service); !ok || existing.Empty() {
			flush()
		}
	}

	return cleanKeys(doc), nil
}

func parseSection(service string, lines []string) *dumptree.Node {
	switch service {
	case "procstats":
		return parseProcstats(lines)
	case "appops":
		// App-ops records are keyed by dynamic UID strings, but they
		// still nest validly, so the robust generic parser applies.
		return dumptree.Parse(lines)
	default:
		return dumptree.Parse(lines)
	}
}

// trailingJunkRe matches stray non-alphanumeric characters the source tool
// leaves at the end of some headers
var trailingJunkRe = regexp.MustCompile(`\W+$`)

// cleanKeys strips trailing punctuation from every map key, recursively.
// Key order is preserved; when cleaning makes two siblings collide, the
// later one wins.
func cleanKeys(n *dumptree.Node) *dumptree.Node {
	switch n.Kind() {
	case dumptree.KindMap:
		cleaned := dumptree.NewMap()
		for _, k := range n.Keys() {
			child, _ := n.Get(k)
			cleaned.Set(trailingJunkRe.ReplaceAllString(k, ""), cleanKeys(child))
		}
		return cleaned
	case dumptree.KindList:
		cleaned := dumptree.NewList()
		for _, e := range n.Elems() {
			cleaned.Append(cleanKeys(e))
		}
		return cleaned
	default:
		return n
	}
}
