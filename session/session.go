// CLAUDE:SUMMARY Tab/Session data model, capture-time session construction, and window grouping.
// Package session defines the captured-tab data model shared by every
// export format: a Session is one capture event holding an ordered list
// of Tabs. Sessions are immutable after creation; history only appends
// or removes them wholesale.
package session

import (
	"fmt"
	"net/url"
	"sort"
	"time"
)

// Tab is one captured browser tab. Field names follow the wire format
// of the persisted history and the JSON export, so a re-parse of an
// export reproduces an equivalent structure.
type Tab struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	WindowID   int    `json:"windowId"`
	Index      int    `json:"index"`
	Pinned     bool   `json:"pinned"`
	FavIconURL string `json:"favIconUrl,omitempty"`
}

// Session is one capture event. Timestamp is the human-readable label
// and the de-facto identity key for history deletion; ISODate is the
// machine-sortable form.
type Session struct {
	Timestamp string `json:"timestamp"`
	ISODate   string `json:"isoDate"`
	Tabs      []Tab  `json:"tabs"`
}

// TimestampLayout renders capture times the way the dashboard and the
// history management surface display them.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// New builds a Session from already-filtered tabs at the given instant.
func New(tabs []Tab, now time.Time) Session {
	return Session{
		Timestamp: now.Format(TimestampLayout),
		ISODate:   now.UTC().Format(time.RFC3339Nano),
		Tabs:      tabs,
	}
}

// CardID derives the composite identity of one rendered tab card:
// session timestamp, window id, tab index, and the tab's position
// within its window group. Unique per artifact for any capture.
func CardID(sessionTimestamp string, windowID, tabIndex, windowPos int) string {
	return fmt.Sprintf("%s-%d-%d-%d", sessionTimestamp, windowID, tabIndex, windowPos)
}

// Window is one window group inside a session: the window id plus the
// tabs captured from it, in capture order.
type Window struct {
	ID   int
	Tabs []Tab
}

// Windows groups a session's tabs by window id in first-tab-seen order.
// Both the Markdown generator and the HTML artifact rely on this order
// being stable for identical input.
func Windows(s Session) []Window {
	var groups []Window
	byID := map[int]int{}
	for _, t := range s.Tabs {
		i, ok := byID[t.WindowID]
		if !ok {
			i = len(groups)
			byID[t.WindowID] = i
			groups = append(groups, Window{ID: t.WindowID})
		}
		groups[i].Tabs = append(groups[i].Tabs, t)
	}
	return groups
}

// Hostname extracts the hostname of a tab URL. ok is false when the
// URL does not parse as an absolute URL or has no host; callers treat
// that as "no hostname" and never as grounds for dropping the tab.
func Hostname(rawURL string) (host string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return "", false
	}
	return u.Hostname(), true
}

// Hostnames returns the sorted distinct hostnames present across the
// given sessions. Tabs with unparsable URLs contribute nothing.
func Hostnames(sessions []Session) []string {
	seen := map[string]bool{}
	for _, s := range sessions {
		for _, t := range s.Tabs {
			if h, ok := Hostname(t.URL); ok {
				seen[h] = true
			}
		}
	}
	hosts := make([]string, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// TabCount sums the tabs across sessions.
func TabCount(sessions []Session) int {
	n := 0
	for _, s := range sessions {
		n += len(s.Tabs)
	}
	return n
}
