package session

import "strings"

// Filter returns the subset of tabs whose URL hostname does not contain
// any blocklist entry as a substring. The blocklist is newline-delimited;
// blank lines and surrounding whitespace are ignored. An empty blocklist
// is the identity filter.
//
// Tabs whose URL fails to parse are kept: a malformed URL is never a
// reason to silently drop a captured tab.
func Filter(tabs []Tab, blocklist string) []Tab {
	entries := parseBlocklist(blocklist)
	if len(entries) == 0 {
		return tabs
	}

	kept := make([]Tab, 0, len(tabs))
	for _, t := range tabs {
		host, ok := Hostname(t.URL)
		if !ok {
			kept = append(kept, t)
			continue
		}
		if !matchesAny(host, entries) {
			kept = append(kept, t)
		}
	}
	return kept
}

func parseBlocklist(blocklist string) []string {
	var entries []string
	for _, line := range strings.Split(blocklist, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

func matchesAny(host string, entries []string) bool {
	for _, e := range entries {
		if strings.Contains(host, e) {
			return true
		}
	}
	return false
}
