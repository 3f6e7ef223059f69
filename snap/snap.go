// CLAUDE:SUMMARY Orchestrates capture, filtering, history persistence, export generation, and download.
// Package snap wires the capture pipeline together: read tabs from the
// source, apply the blocklist, persist to history, generate the export
// and hand it to the download sink. The HTTP and MCP surfaces both sit
// on top of this service.
package snap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/hazyhaar/tabsnap/download"
	"github.com/hazyhaar/tabsnap/export"
	"github.com/hazyhaar/tabsnap/history"
	"github.com/hazyhaar/tabsnap/session"
	"github.com/hazyhaar/tabsnap/settings"
)

// ErrNoTabs is returned when a capture yields nothing to export, either
// because no tabs are open or the blocklist removed them all.
var ErrNoTabs = errors.New("snap: no tabs to export")

// TabSource yields the current open tabs. tabsource.Source implements
// it against a live Chrome; tests substitute a fixture.
type TabSource interface {
	Capture(ctx context.Context) ([]session.Tab, error)
	ReplaceWithDashboard(ctx context.Context, url string) error
}

// Config configures the service.
type Config struct {
	Source       TabSource
	History      *history.Store // nil disables history entirely
	SettingsPath string
	ExportDir    string
	Logger       *slog.Logger
	Now          func() time.Time
}

// Service is the tabsnap pipeline. Safe for concurrent use.
type Service struct {
	cfg Config

	mu sync.Mutex // serializes capture+export runs
}

// New creates a Service. Source and ExportDir are required.
func New(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("snap: source is required")
	}
	if cfg.ExportDir == "" {
		return nil, fmt.Errorf("snap: export dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{cfg: cfg}, nil
}

// ExportRequest selects what one export run covers. Zero values defer
// to the stored settings.
type ExportRequest struct {
	// Format overrides the settings format when non-empty.
	Format string `json:"format,omitempty"`

	// IncludeHistory forces a history-mode export covering all stored
	// sessions. It defaults on whenever the enable_history preference
	// is set, so this flag only matters for one-off runs against a
	// store whose preference is off.
	IncludeHistory bool `json:"includeHistory,omitempty"`
}

// ExportResult describes a completed export run.
type ExportResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Tabs     int    `json:"tabs"`
	Sessions int    `json:"sessions"`
}

// Export runs one full capture and export cycle.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Settings()
	if err != nil {
		return nil, err
	}

	formatName := req.Format
	if formatName == "" {
		formatName = prefs.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("snap: %w", err)
	}

	tabs, err := s.cfg.Source.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("snap: capture: %w", err)
	}
	tabs = session.Filter(tabs, prefs.Blocklist)
	if len(tabs) == 0 {
		return nil, ErrNoTabs
	}

	now := s.cfg.Now()
	sess := session.New(tabs, now)

	historyOn := prefs.EnableHistory && s.cfg.History != nil
	if historyOn {
		if err := s.cfg.History.Append(ctx, sess); err != nil {
			return nil, err
		}
	}

	// With history enabled, every export covers the full saved timeline
	// under the stable tabs-history name. The request flag forces one
	// such run even when the preference is off.
	sessions := []session.Session{sess}
	includeHistory := (req.IncludeHistory || prefs.EnableHistory) && s.cfg.History != nil
	if includeHistory {
		sessions, err = s.cfg.History.List(ctx)
		if err != nil {
			return nil, err
		}
	}

	result, err := export.Generate(format, sessions, includeHistory, now)
	if err != nil {
		return nil, fmt.Errorf("snap: generate: %w", err)
	}

	// Stable history filenames replace the previous file; timestamped
	// names never collide on purpose, so uniquify on accident.
	policy := download.Uniquify
	if includeHistory {
		policy = download.Overwrite
	}
	sink := download.New(s.cfg.ExportDir, policy, s.cfg.Logger)
	// With auto_save off a browser would raise a save dialog for plain
	// exports; the sink logs the target path in its place. History
	// snapshots always save silently.
	sink.Prompt = !prefs.AutoSave && !includeHistory
	path, err := sink.Save(*result)
	if err != nil {
		return nil, err
	}

	if prefs.OpenAndClose && format == export.FormatHTML {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		if err := s.cfg.Source.ReplaceWithDashboard(ctx, "file://"+abs); err != nil {
			s.cfg.Logger.Warn("snap: open and close failed", "error", err)
		}
	}

	s.cfg.Logger.Info("snap: export complete",
		"format", string(format),
		"tabs", len(tabs),
		"sessions", len(sessions),
		"path", path)

	return &ExportResult{
		Path:     path,
		Filename: result.Filename,
		MIME:     result.MIME,
		Tabs:     len(tabs),
		Sessions: len(sessions),
	}, nil
}

// Capture reads and filters the current tabs without exporting or
// persisting anything. Used by callers that want to see what an export
// would contain.
func (s *Service) Capture(ctx context.Context) (session.Session, error) {
	prefs, err := s.Settings()
	if err != nil {
		return session.Session{}, err
	}
	tabs, err := s.cfg.Source.Capture(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("snap: capture: %w", err)
	}
	tabs = session.Filter(tabs, prefs.Blocklist)
	if len(tabs) == 0 {
		return session.Session{}, ErrNoTabs
	}
	return session.New(tabs, s.cfg.Now()), nil
}

// History lists stored sessions oldest-first. Returns ErrHistoryOff
// when no store is configured.
func (s *Service) History(ctx context.Context) ([]session.Session, error) {
	if s.cfg.History == nil {
		return nil, ErrHistoryOff
	}
	return s.cfg.History.List(ctx)
}

// ErrHistoryOff is returned by history operations when the service was
// built without a store.
var ErrHistoryOff = errors.New("snap: history is not configured")

// DeleteSession removes every stored session with the given display
// timestamp.
func (s *Service) DeleteSession(ctx context.Context, timestamp string) error {
	if s.cfg.History == nil {
		return ErrHistoryOff
	}
	return s.cfg.History.DeleteByTimestamp(ctx, timestamp)
}

// ClearHistory removes all stored sessions.
func (s *Service) ClearHistory(ctx context.Context) error {
	if s.cfg.History == nil {
		return ErrHistoryOff
	}
	return s.cfg.History.Clear(ctx)
}

// Settings loads the current preferences.
func (s *Service) Settings() (settings.Settings, error) {
	return settings.Load(s.cfg.SettingsPath)
}

// UpdateSettings validates and persists new preferences.
func (s *Service) UpdateSettings(prefs settings.Settings) error {
	return settings.Save(s.cfg.SettingsPath, prefs)
}
