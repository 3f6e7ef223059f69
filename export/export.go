// CLAUDE:SUMMARY Deterministic CSV/Markdown/JSON generators plus the export orchestrator (format, filename, MIME).
// Package export renders captured sessions into one of the supported
// output formats and derives the filename and MIME type for the
// download sink. All generators are pure: identical session input
// yields byte-identical output.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/tabsnap/artifact"
	"github.com/hazyhaar/tabsnap/session"
)

// Format is an export output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned for formats outside the supported set.
var ErrUnknownFormat = fmt.Errorf("export: unknown format")

// ParseFormat validates a format string. Empty defaults to HTML, which
// is also the fallback the original settings surface used.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, "":
		return FormatHTML, nil
	case FormatMarkdown, FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// MIME returns the MIME type for a format.
func (f Format) MIME() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown"
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "text/html"
	}
}

func (f Format) ext() string { return string(f) }

// Filename derives the output filename. History exports always target
// the same fixed name so successive saves overwrite one file; single
// session exports carry a filesystem-safe ISO-ish stamp.
func (f Format) Filename(isHistory bool, now time.Time) string {
	if isHistory {
		return "tabs-history." + f.ext()
	}
	stamp := now.UTC().Format("2006-01-02T15-04-05")
	if f == FormatHTML {
		return "tabs-dashboard-" + stamp + ".html"
	}
	return "tabs-export-" + stamp + "." + f.ext()
}

// CSV renders one header row then one row per tab across all sessions,
// oldest session first, tabs in capture order. Text fields are quoted
// with embedded quotes doubled; the window id is numeric and unquoted.
func CSV(sessions []session.Session) string {
	var b strings.Builder
	b.WriteString("Date,Window,Title,URL\n")
	for _, s := range sessions {
		for _, t := range s.Tabs {
			fmt.Fprintf(&b, "%s,%d,%s,%s\n",
				csvQuote(s.Timestamp), t.WindowID, csvQuote(t.Title), csvQuote(t.URL))
		}
	}
	return b.String()
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Markdown renders one ## heading per session with tabs grouped under
// ### headings by window in first-seen order.
func Markdown(sessions []session.Session) string {
	var b strings.Builder
	b.WriteString("# Saved Tabs Export\n\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "## Session: %s\n\n", s.Timestamp)
		for i, w := range session.Windows(s) {
			fmt.Fprintf(&b, "### Window %d\n", i+1)
			for _, t := range w.Tabs {
				fmt.Fprintf(&b, "- [%s](%s)\n", t.Title, t.URL)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// JSON serializes the full session list with indentation. The output
// re-parses to a structure equal to the input.
func JSON(sessions []session.Session) (string, error) {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal sessions: %w", err)
	}
	return string(data), nil
}

// Result is a generated export ready for the download sink.
type Result struct {
	Content  string
	Filename string
	MIME     string
}

// Generate runs the generator for the requested format. isHistory
// selects the fixed-name overwrite target; now stamps single-session
// filenames and, for HTML, the artifact identity.
func Generate(format Format, sessions []session.Session, isHistory bool, now time.Time) (*Result, error) {
	var content string
	var err error

	switch format {
	case FormatMarkdown:
		content = Markdown(sessions)
	case FormatCSV:
		content = CSV(sessions)
	case FormatJSON:
		content, err = JSON(sessions)
	case FormatHTML:
		content, err = artifact.Build(sessions, artifact.Options{Now: now})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Content:  content,
		Filename: format.Filename(isHistory, now),
		MIME:     format.MIME(),
	}, nil
}
