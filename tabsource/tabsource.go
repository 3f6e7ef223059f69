// CLAUDE:SUMMARY Captures open tabs from a live Chrome over CDP and swaps them for an exported dashboard.
// Package tabsource reads the open tabs of a running Chrome instance
// via Rod: connect, enumerate page targets, resolve each target's
// window, and assemble the capture in tab order.
package tabsource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/tabsnap/session"
)

// Config configures the connection to Chrome.
type Config struct {
	// RemoteURL is the WebSocket URL of a running Chrome started with
	// --remote-debugging-port. Empty = launch a local headless Chrome
	// (useful for tests, not for capturing a user's real windows).
	RemoteURL string

	// PageTimeout bounds per-page CDP calls. Default: 10s.
	PageTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PageTimeout <= 0 {
		c.PageTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Source is a connected Chrome tab source.
type Source struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher

	mu       sync.Mutex
	captured []proto.TargetTargetID
}

// Connect attaches to Chrome. Callers must Close the source.
func Connect(cfg Config) (*Source, error) {
	cfg.defaults()
	s := &Source{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("tabsource: launch: %w", err)
		}
		s.lnch = l
		wsURL = u
		cfg.Logger.Info("tabsource: launched local chrome", "url", wsURL)
	} else {
		cfg.Logger.Info("tabsource: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if s.lnch != nil {
			s.lnch.Cleanup()
		}
		return nil, fmt.Errorf("tabsource: connect: %w", err)
	}
	s.browser = b
	return s, nil
}

// Close disconnects from Chrome. A locally launched instance is shut
// down; a remote one is left running.
func (s *Source) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
	return err
}

// pageInfo is what Capture extracts from each CDP page target before
// assembly into session tabs.
type pageInfo struct {
	title    string
	url      string
	windowID int
	favicon  string
}

// Capture enumerates all regular-profile page targets and returns them
// as session tabs. Incognito pages (non-default browser contexts) are
// skipped. Pinned state is not exposed over CDP, so captured tabs
// always report unpinned.
func (s *Source) Capture(ctx context.Context) ([]session.Tab, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("tabsource: list pages: %w", err)
	}

	incognito, err := s.incognitoContexts()
	if err != nil {
		s.cfg.Logger.Warn("tabsource: browser context lookup failed", "error", err)
		incognito = nil
	}

	var infos []pageInfo
	var ids []proto.TargetTargetID
	for _, page := range pages {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
		info, err := s.inspectPage(pctx, page, incognito)
		cancel()
		if err != nil {
			s.cfg.Logger.Warn("tabsource: skipping page", "error", err)
			continue
		}
		if info == nil {
			continue
		}
		infos = append(infos, *info)
		ids = append(ids, page.TargetID)
	}

	s.mu.Lock()
	s.captured = ids
	s.mu.Unlock()

	return assembleTabs(infos), nil
}

// ReplaceWithDashboard opens url in a fresh tab and closes every page
// recorded by the last Capture. The dashboard opens first so the
// window survives when the capture covered all its tabs.
func (s *Source) ReplaceWithDashboard(ctx context.Context, url string) error {
	s.mu.Lock()
	captured := s.captured
	s.captured = nil
	s.mu.Unlock()

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("tabsource: open dashboard: %w", err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		s.cfg.Logger.Warn("tabsource: dashboard load wait", "error", err)
	}

	for _, id := range captured {
		_, err := proto.TargetCloseTarget{TargetID: id}.Call(s.browser)
		if err != nil {
			s.cfg.Logger.Warn("tabsource: close tab", "target", string(id), "error", err)
		}
	}
	s.cfg.Logger.Info("tabsource: replaced tabs with dashboard",
		"closed", len(captured), "url", url)
	return nil
}

func (s *Source) incognitoContexts() (map[proto.BrowserBrowserContextID]bool, error) {
	res, err := proto.TargetGetBrowserContexts{}.Call(s.browser)
	if err != nil {
		return nil, err
	}
	out := make(map[proto.BrowserBrowserContextID]bool, len(res.BrowserContextIDs))
	for _, id := range res.BrowserContextIDs {
		out[id] = true
	}
	return out, nil
}

// inspectPage resolves one page target. A nil result with nil error
// means the page was deliberately skipped (incognito).
func (s *Source) inspectPage(ctx context.Context, page *rod.Page, incognito map[proto.BrowserBrowserContextID]bool) (*pageInfo, error) {
	p := page.Context(ctx)

	info, err := p.Info()
	if err != nil {
		return nil, fmt.Errorf("target info: %w", err)
	}
	if incognito[info.BrowserContextID] {
		return nil, nil
	}

	win, err := proto.BrowserGetWindowForTarget{}.Call(p)
	if err != nil {
		return nil, fmt.Errorf("window for target: %w", err)
	}

	favicon := ""
	if res, err := p.Eval(`() => {
		const l = document.querySelector('link[rel~="icon"]');
		return l ? l.href : '';
	}`); err == nil {
		favicon = res.Value.Str()
	}

	return &pageInfo{
		title:    info.Title,
		url:      info.URL,
		windowID: int(win.WindowID),
		favicon:  favicon,
	}, nil
}

// assembleTabs converts inspected pages into session tabs, numbering
// each tab by its position within its own window in enumeration order.
func assembleTabs(infos []pageInfo) []session.Tab {
	nextIndex := map[int]int{}
	tabs := make([]session.Tab, 0, len(infos))
	for _, in := range infos {
		idx := nextIndex[in.windowID]
		nextIndex[in.windowID] = idx + 1
		tabs = append(tabs, session.Tab{
			Title:      in.title,
			URL:        in.url,
			WindowID:   in.windowID,
			Index:      idx,
			FavIconURL: in.favicon,
		})
	}
	return tabs
}
