// Package download writes export results to disk the way a browser
// download would: into a fixed directory, with a conflict policy
// instead of an interactive save dialog.
package download

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/tabsnap/export"
)

// Conflict selects what happens when the target filename already exists.
type Conflict string

const (
	// Overwrite replaces the existing file. Used for the stable
	// tabs-history.* filenames, which are meant to be replaced on
	// every auto-save.
	Overwrite Conflict = "overwrite"

	// Uniquify appends " (1)", " (2)", ... before the extension until
	// an unused name is found. Used for timestamped export names.
	Uniquify Conflict = "uniquify"
)

const uniquifyLimit = 1000

// Sink writes export results into a directory.
type Sink struct {
	Dir        string
	OnConflict Conflict
	Logger     *slog.Logger

	// Prompt marks runs where a browser would raise a save dialog
	// because auto-save is off. There is no dialog here; the sink
	// announces the target path in the log and saves without waiting.
	Prompt bool
}

// New returns a Sink writing into dir. A nil logger defaults to
// slog.Default.
func New(dir string, onConflict Conflict, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{Dir: dir, OnConflict: onConflict, Logger: logger}
}

// Save writes res into the sink directory and returns the final path.
// There is no interactive prompt; the chosen path is logged instead.
func (s *Sink) Save(res export.Result) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("download: mkdir: %w", err)
	}

	path := filepath.Join(s.Dir, res.Filename)
	if s.OnConflict == Uniquify {
		var err error
		path, err = uniquify(path)
		if err != nil {
			return "", err
		}
	}

	msg := "download saving"
	if s.Prompt {
		msg = "download save prompt"
	}
	s.Logger.Info(msg,
		"path", path,
		"mime", res.MIME,
		"bytes", len(res.Content))

	if err := os.WriteFile(path, []byte(res.Content), 0o644); err != nil {
		return "", fmt.Errorf("download: write: %w", err)
	}
	return path, nil
}

// uniquify returns path if unused, otherwise the first "name (N).ext"
// variant that does not exist yet.
func uniquify(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i <= uniquifyLimit; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("download: no free name for %s after %d attempts", path, uniquifyLimit)
}
