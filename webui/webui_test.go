package webui_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/tabsnap/dbopen"
	"github.com/hazyhaar/tabsnap/history"
	"github.com/hazyhaar/tabsnap/session"
	"github.com/hazyhaar/tabsnap/settings"
	"github.com/hazyhaar/tabsnap/snap"
	"github.com/hazyhaar/tabsnap/webui"
)

type stubSource struct {
	tabs []session.Tab
}

func (s *stubSource) Capture(context.Context) ([]session.Tab, error) { return s.tabs, nil }
func (s *stubSource) ReplaceWithDashboard(context.Context, string) error {
	return nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	if err := settings.Save(settingsPath, settings.Settings{Format: "json", EnableHistory: true}); err != nil {
		t.Fatal(err)
	}

	db := dbopen.OpenMemory(t, dbopen.WithSchema(history.Schema()))
	svc, err := snap.New(snap.Config{
		Source: &stubSource{tabs: []session.Tab{
			{Title: "A", URL: "https://a.example", WindowID: 1},
			{Title: "B", URL: "https://b.example", WindowID: 1, Index: 1},
		}},
		History:      history.New(db),
		SettingsPath: settingsPath,
		ExportDir:    filepath.Join(dir, "exports"),
		Logger:       slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Now:          func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(webui.New(svc, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newServer(t)
	var body map[string]string
	if code := getJSON(t, ts.URL+"/health", &body); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newServer(t)

	var prefs settings.Settings
	if code := getJSON(t, ts.URL+"/api/settings", &prefs); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if prefs.Format != "json" {
		t.Errorf("format = %q", prefs.Format)
	}

	resp := do(t, http.MethodPut, ts.URL+"/api/settings",
		`{"format":"md","blocklist":"x.example","enable_history":true}`)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	getJSON(t, ts.URL+"/api/settings", &prefs)
	if prefs.Format != "md" || prefs.Blocklist != "x.example" {
		t.Errorf("settings after put = %+v", prefs)
	}
}

func TestPutSettingsRejectsBadFormat(t *testing.T) {
	ts := newServer(t)
	resp := do(t, http.MethodPut, ts.URL+"/api/settings", `{"format":"pdf"}`)
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExportAndHistoryFlow(t *testing.T) {
	ts := newServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/export", `{}`)
	var res snap.ExportResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if res.Tabs != 2 {
		t.Errorf("tabs = %d", res.Tabs)
	}

	var sessions []session.Session
	if code := getJSON(t, ts.URL+"/api/history", &sessions); code != 200 {
		t.Fatalf("history status = %d", code)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d", len(sessions))
	}

	// Delete by timestamp, then confirm 404 on repeat.
	target := ts.URL + "/api/history?timestamp=" + url.QueryEscape(sessions[0].Timestamp)
	resp = do(t, http.MethodDelete, target, "")
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodDelete, target, "")
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestClearHistory(t *testing.T) {
	ts := newServer(t)

	for range 2 {
		resp := do(t, http.MethodPost, ts.URL+"/api/export", `{}`)
		resp.Body.Close()
	}

	resp := do(t, http.MethodDelete, ts.URL+"/api/history", "")
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("clear status = %d", resp.StatusCode)
	}

	var sessions []session.Session
	getJSON(t, ts.URL+"/api/history", &sessions)
	if len(sessions) != 0 {
		t.Errorf("sessions after clear = %d", len(sessions))
	}
}

func TestOptionsPageServed(t *testing.T) {
	ts := newServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing on static page")
	}
}
