package artifact

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Card is one tab card recovered from a generated dashboard.
type Card struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	SessionTS string `json:"session"`
}

// Summary is the structural content of a generated dashboard: what the
// embedded client script would see when the file is opened.
type Summary struct {
	Title          string   `json:"title"`
	ArtifactID     string   `json:"artifactId"`
	Cards          []Card   `json:"cards"`
	SessionOptions []string `json:"sessionOptions"`
	DomainOptions  []string `json:"domainOptions"`
}

// Inspect parses a dashboard document and recovers its card list and
// filter options. It reads the same data attributes the client script
// uses, so it doubles as a structural check that an artifact is intact.
func Inspect(r io.Reader) (*Summary, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: parse: %w", err)
	}

	sum := &Summary{}
	walk(doc, "", sum)
	return sum, nil
}

func walk(n *html.Node, sessionTS string, sum *Summary) {
	if n.Type == html.ElementNode {
		switch {
		case n.DataAtom == atom.Title:
			if n.FirstChild != nil && sum.Title == "" {
				sum.Title = n.FirstChild.Data
			}
		case n.DataAtom == atom.Script:
			if n.FirstChild != nil && sum.ArtifactID == "" {
				sum.ArtifactID = scriptArtifactID(n.FirstChild.Data)
			}
		case n.DataAtom == atom.Select:
			switch attr(n, "id") {
			case "filter-session":
				sum.SessionOptions = optionValues(n)
			case "filter-domain":
				sum.DomainOptions = optionValues(n)
			}
		case hasClass(n, "session-group"):
			sessionTS = attr(n, "data-session-ts")
		case hasClass(n, "tab-card"):
			sum.Cards = append(sum.Cards, Card{
				ID:        attr(n, "data-id"),
				Title:     attr(n, "data-title"),
				URL:       attr(n, "data-url"),
				SessionTS: sessionTS,
			})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, sessionTS, sum)
	}
}

// scriptArtifactID pulls the baked-in identity out of the embedded
// client script.
func scriptArtifactID(script string) string {
	const marker = "var ARTIFACT_ID = '"
	i := strings.Index(script, marker)
	if i < 0 {
		return ""
	}
	rest := script[i+len(marker):]
	if j := strings.IndexByte(rest, '\''); j >= 0 {
		return rest[:j]
	}
	return ""
}

func optionValues(sel *html.Node) []string {
	var values []string
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Option {
			if v := attr(c, "value"); v != "" && v != "all" {
				values = append(values, v)
			}
		}
	}
	return values
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
