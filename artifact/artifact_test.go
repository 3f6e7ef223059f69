package artifact

import (
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/tabsnap/session"
)

var buildTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func twoSessions() []session.Session {
	a := session.New([]session.Tab{
		{Title: "Alpha", URL: "https://a.com/x", WindowID: 1, Index: 0, Pinned: true},
		{Title: "Beta", URL: "https://b.com/y", WindowID: 1, Index: 1},
	}, buildTime.Add(-24*time.Hour))
	b := session.New([]session.Tab{
		{Title: "Gamma", URL: "https://a.com/z", WindowID: 7, Index: 0},
	}, buildTime)
	return []session.Session{a, b}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatal("expected error for zero sessions")
	}
}

func TestBuildTitle(t *testing.T) {
	single, err := Build(twoSessions()[:1], Options{Now: buildTime, ID: "tabs-test-1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(single, "<title>2 Tabs Saved</title>") {
		t.Error("single-session title missing")
	}
	if strings.Contains(single, "session-header") {
		t.Error("single-session export should not render session headers")
	}

	multi, err := Build(twoSessions(), Options{Now: buildTime, ID: "tabs-test-2"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(multi, "<title>Saved Tabs History (2 sessions)</title>") {
		t.Error("multi-session title missing")
	}
	if !strings.Contains(multi, "session-header") {
		t.Error("multi-session export should render session headers")
	}
}

func TestBuildDeterministic(t *testing.T) {
	opts := Options{Now: buildTime, ID: "tabs-fixed"}
	first, err := Build(twoSessions(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(twoSessions(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical input should produce byte-identical output")
	}
}

func TestBuildStructure(t *testing.T) {
	sessions := twoSessions()
	doc, err := Build(sessions, Options{Now: buildTime, ID: "tabs-struct"})
	if err != nil {
		t.Fatal(err)
	}

	sum, err := Inspect(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if sum.ArtifactID != "tabs-struct" {
		t.Errorf("artifact id = %q", sum.ArtifactID)
	}
	if len(sum.Cards) != 3 {
		t.Fatalf("cards = %d, want 3", len(sum.Cards))
	}

	// Card identities are distinct.
	ids := map[string]bool{}
	for _, c := range sum.Cards {
		if ids[c.ID] {
			t.Errorf("duplicate card id %q", c.ID)
		}
		ids[c.ID] = true
	}

	// Newest session renders first.
	if sum.Cards[0].SessionTS != sessions[1].Timestamp {
		t.Errorf("first card session = %q, want newest %q", sum.Cards[0].SessionTS, sessions[1].Timestamp)
	}

	// Domain selector holds exactly the distinct hostnames, sorted.
	if len(sum.DomainOptions) != 2 || sum.DomainOptions[0] != "a.com" || sum.DomainOptions[1] != "b.com" {
		t.Errorf("domain options = %v", sum.DomainOptions)
	}

	// Session selector holds both timestamps.
	if len(sum.SessionOptions) != 2 {
		t.Errorf("session options = %v", sum.SessionOptions)
	}

	// Exactly one script close: the embedded client must not contain a
	// premature terminator.
	if n := strings.Count(doc, "</script>"); n != 1 {
		t.Errorf("script close count = %d, want 1", n)
	}

	if !strings.Contains(doc, "class=\"pin\"") {
		t.Error("pinned tab marker missing")
	}
}

func TestBuildEscaping(t *testing.T) {
	hostile := session.New([]session.Tab{
		{
			Title:    `Tom & Jerry's "best" <script>alert(1)</script>`,
			URL:      `https://evil.com/?q="><script>alert(2)</script>&x='y'`,
			WindowID: 1,
		},
	}, buildTime)

	doc, err := Build([]session.Session{hostile}, Options{Now: buildTime, ID: "tabs-esc"})
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(doc, "<script>alert") {
		t.Error("unescaped script tag survived into markup")
	}
	if strings.Contains(doc, `"><script`) {
		t.Error("attribute breakout survived into markup")
	}

	sum, err := Inspect(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Cards) != 1 {
		t.Fatalf("cards = %d", len(sum.Cards))
	}
	// The URL round-trips exactly; hostile characters live only in
	// escaped form inside the document.
	if sum.Cards[0].URL != hostile.Tabs[0].URL {
		t.Errorf("url did not round-trip: %q", sum.Cards[0].URL)
	}
	if !strings.Contains(sum.Cards[0].Title, "Tom & Jerry's") {
		t.Errorf("title text lost: %q", sum.Cards[0].Title)
	}
	if strings.Contains(sum.Cards[0].Title, "<script>") {
		t.Errorf("markup survived title sanitization: %q", sum.Cards[0].Title)
	}
}

func TestBuildFavicon(t *testing.T) {
	s := session.New([]session.Tab{
		{Title: "with icon", URL: "https://a.com", WindowID: 1, FavIconURL: "https://a.com/favicon.ico"},
		{Title: "without icon", URL: "https://b.com", WindowID: 1, Index: 1},
	}, buildTime)
	doc, err := Build([]session.Session{s}, Options{Now: buildTime, ID: "tabs-fav"})
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(doc, "class=\"favicon\""); n != 1 {
		t.Errorf("favicon imgs = %d, want 1", n)
	}
}

func TestToMarkdown(t *testing.T) {
	doc, err := Build(twoSessions(), Options{Now: buildTime, ID: "tabs-md"})
	if err != nil {
		t.Fatal(err)
	}
	md, err := ToMarkdown(doc)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Alpha", "https://a.com/x", "https://b.com/y"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "ARTIFACT_ID") {
		t.Error("client script leaked into markdown output")
	}
}
