// CLAUDE:SUMMARY Builds the self-contained HTML dashboard: markup, embedded stylesheet, embedded client script.
// Package artifact composes captured sessions into a single static HTML
// document. The document embeds its own stylesheet and client script,
// so a saved file provides search, filtering, trash, bulk reopening and
// theme switching with no backend and no network fetches.
//
// Every dynamic string interpolated into the markup (titles, URLs,
// favicon URLs, session timestamps) is HTML-entity-escaped first: tab
// titles and URLs are page-controlled strings and must not be able to
// break out of tag or attribute boundaries.
package artifact

import (
	_ "embed"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/tabsnap/idgen"
	"github.com/hazyhaar/tabsnap/session"
)

//go:embed style.css
var styleCSS string

//go:embed app.js
var appJS string

// idPlaceholder is replaced in app.js with the artifact identity at
// build time. The identity namespaces the dashboard's localStorage so
// two exported files opened in the same profile never share state.
const idPlaceholder = "__ARTIFACT_ID__"

// Options configures a build.
type Options struct {
	// Now stamps the artifact identity and the footer. Zero means
	// time.Now().
	Now time.Time

	// ID overrides the derived artifact identity. Empty derives
	// "tabs-<unix-ms>-<token>" from Now.
	ID string
}

// titlePolicy strips any markup that leaked into a captured tab title.
// Sanitize escapes entities in its output, so the result is unescaped
// back to plain text and escaped exactly once at interpolation.
var titlePolicy = bluemonday.StrictPolicy()

func plainText(s string) string {
	return html.UnescapeString(titlePolicy.Sanitize(s))
}

func esc(s string) string {
	return html.EscapeString(s)
}

// Build renders the dashboard document for the given sessions, newest
// session first. It returns an error only when there is nothing to
// render; per-tab oddities (broken URLs, markup in titles) degrade
// gracefully instead of failing the export.
func Build(sessions []session.Session, opts Options) (string, error) {
	if len(sessions) == 0 {
		return "", fmt.Errorf("artifact: no sessions to render")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	id := opts.ID
	if id == "" {
		id = idgen.Artifact(now)
	}

	title := deriveTitle(sessions)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", esc(title))
	fmt.Fprintf(&b, "  <style>%s</style>\n", styleCSS)
	b.WriteString("</head>\n<body>\n")

	writeControls(&b, title, sessions)
	writeSessions(&b, sessions)
	writeFooter(&b, now)

	fmt.Fprintf(&b, "<script>%s</script>\n",
		strings.ReplaceAll(appJS, idPlaceholder, id))
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// deriveTitle reflects whether this is a history export or a single
// capture, and the count that matters for each.
func deriveTitle(sessions []session.Session) string {
	if len(sessions) > 1 {
		return fmt.Sprintf("Saved Tabs History (%d sessions)", len(sessions))
	}
	return fmt.Sprintf("%d Tabs Saved", len(sessions[0].Tabs))
}

func writeControls(b *strings.Builder, title string, sessions []session.Session) {
	fmt.Fprintf(b, "<h1>%s</h1>\n", esc(title))
	b.WriteString("<div class=\"controls\">\n")
	b.WriteString("  <input type=\"text\" id=\"search\" placeholder=\"Search title or URL...\">\n")

	b.WriteString("  <div class=\"open-filters\">\n")
	b.WriteString("    <label>Filters for Open All:</label>\n")
	b.WriteString("    <select id=\"filter-session\">\n      <option value=\"all\">All Dates</option>\n")
	for _, s := range sessions {
		fmt.Fprintf(b, "      <option value=\"%s\">%s</option>\n", esc(s.Timestamp), esc(s.Timestamp))
	}
	b.WriteString("    </select>\n")
	b.WriteString("    <select id=\"filter-domain\">\n      <option value=\"all\">All Domains</option>\n")
	for _, h := range session.Hostnames(sessions) {
		fmt.Fprintf(b, "      <option value=\"%s\">%s</option>\n", esc(h), esc(h))
	}
	b.WriteString("    </select>\n")
	b.WriteString("    <button id=\"open-all\" class=\"success\">Open All Tabs</button>\n")
	b.WriteString("  </div>\n")

	b.WriteString("  <button id=\"toggle-theme\">Toggle Theme</button>\n")
	b.WriteString("  <button id=\"toggle-trash\">View Trash</button>\n")
	b.WriteString("  <button id=\"clear-trash\" class=\"danger hidden\">Empty Trash</button>\n")
	b.WriteString("</div>\n")
}

// writeSessions renders sessions newest-first, each as one group per
// window in first-seen order, one card per tab in capture order. The
// card's data attributes are the only join channel between the static
// markup and the client state machine.
func writeSessions(b *strings.Builder, sessions []session.Session) {
	multi := len(sessions) > 1

	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		fmt.Fprintf(b, "<div class=\"session-group\" data-session-ts=\"%s\">\n", esc(s.Timestamp))
		if multi {
			fmt.Fprintf(b, "<div class=\"session-header\"><h2>Session: %s</h2></div>\n", esc(s.Timestamp))
		}

		for wIdx, w := range session.Windows(s) {
			fmt.Fprintf(b, "<div class=\"window-group\">\n<div class=\"window-title\">Window %d (%d tabs)</div>\n<div class=\"tabs-grid\">\n",
				wIdx+1, len(w.Tabs))
			for pos, tab := range w.Tabs {
				writeCard(b, s.Timestamp, tab, pos)
			}
			b.WriteString("</div>\n</div>\n")
		}
		b.WriteString("</div>\n")
	}
}

func writeCard(b *strings.Builder, sessionTS string, tab session.Tab, windowPos int) {
	id := session.CardID(sessionTS, tab.WindowID, tab.Index, windowPos)
	title := plainText(tab.Title)

	fmt.Fprintf(b, "<div class=\"tab-card\" data-id=\"%s\" data-title=\"%s\" data-url=\"%s\">\n",
		esc(id), esc(title), esc(tab.URL))
	if tab.FavIconURL != "" {
		fmt.Fprintf(b, "  <img src=\"%s\" class=\"favicon\" alt=\"\" onerror=\"this.style.display='none'\">\n",
			esc(tab.FavIconURL))
	}
	b.WriteString("  <div class=\"tab-info\">\n    <div class=\"tab-title\">\n")
	if tab.Pinned {
		b.WriteString("      <span class=\"pin\" title=\"Pinned\">&#128204;</span>\n")
	}
	fmt.Fprintf(b, "      <a href=\"%s\" target=\"_blank\" class=\"tab-link\">%s</a>\n", esc(tab.URL), esc(title))
	b.WriteString("    </div>\n")
	fmt.Fprintf(b, "    <a class=\"tab-url\" href=\"%s\" target=\"_blank\">%s</a>\n", esc(tab.URL), esc(tab.URL))
	b.WriteString("  </div>\n")
	b.WriteString("  <div class=\"card-actions\">\n")
	b.WriteString("    <button class=\"action-btn delete-btn\" title=\"Move to Trash\">&#10005;</button>\n")
	b.WriteString("    <button class=\"action-btn restore-btn\" title=\"Restore\">&#8634;</button>\n")
	b.WriteString("    <button class=\"action-btn purge-btn\" title=\"Delete Permanently\">XX</button>\n")
	b.WriteString("  </div>\n")
	b.WriteString("</div>\n")
}

func writeFooter(b *strings.Builder, now time.Time) {
	b.WriteString("<footer>\n")
	fmt.Fprintf(b, "  <p>Generated on %s</p>\n", esc(now.Format(session.TimestampLayout)))
	b.WriteString("  <a href=\"#\" id=\"reset-state\" class=\"reset-state-link\">reset view settings</a>\n")
	b.WriteString("</footer>\n")
}
