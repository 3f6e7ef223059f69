// CLAUDE:SUMMARY Entry point for tabsnap — one-shot export, HTTP management server, MCP stdio, inspect/convert utilities.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/tabsnap/artifact"
	"github.com/hazyhaar/tabsnap/history"
	"github.com/hazyhaar/tabsnap/snap"
	"github.com/hazyhaar/tabsnap/tabsource"
	"github.com/hazyhaar/tabsnap/webui"
)

func main() {
	var (
		serve          = flag.Bool("serve", false, "run the HTTP management server")
		runMCP         = flag.Bool("mcp", false, "run as an MCP stdio server")
		inspectPath    = flag.String("inspect", "", "summarize a dashboard HTML file and exit")
		convertPath    = flag.String("convert", "", "convert a dashboard HTML file to Markdown on stdout and exit")
		format         = flag.String("format", "", "export format for one-shot mode: html, md, csv, json")
		includeHistory = flag.Bool("include-history", false, "export all saved sessions in one-shot mode")
	)
	flag.Parse()

	logLevel := env("LOG_LEVEL", "info")
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// File utilities need no browser or database.
	if *inspectPath != "" {
		if err := runInspect(*inspectPath); err != nil {
			slog.Error("inspect", "error", err)
			os.Exit(1)
		}
		return
	}
	if *convertPath != "" {
		if err := runConvert(*convertPath); err != nil {
			slog.Error("convert", "error", err)
			os.Exit(1)
		}
		return
	}

	source, err := tabsource.Connect(tabsource.Config{
		RemoteURL: env("CHROME_URL", ""),
		Logger:    logger,
	})
	if err != nil {
		slog.Error("chrome", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	store, err := history.Open(env("HISTORY_DB", "db/history.db"))
	if err != nil {
		slog.Error("history db", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	svc, err := snap.New(snap.Config{
		Source:       source,
		History:      store,
		SettingsPath: env("SETTINGS_PATH", "settings.yaml"),
		ExportDir:    env("EXPORT_DIR", "exports"),
		Logger:       logger,
	})
	if err != nil {
		slog.Error("service", "error", err)
		os.Exit(1)
	}

	switch {
	case *runMCP:
		runMCPServer(ctx, svc)
	case *serve:
		runHTTPServer(ctx, svc)
	default:
		res, err := svc.Export(ctx, snap.ExportRequest{
			Format:         *format,
			IncludeHistory: *includeHistory,
		})
		if err != nil {
			slog.Error("export", "error", err)
			os.Exit(1)
		}
		fmt.Println(res.Path)
	}
}

func runHTTPServer(ctx context.Context, svc *snap.Service) {
	port := env("PORT", "8097")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           webui.New(svc, slog.Default()).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func runMCPServer(ctx context.Context, svc *snap.Service) {
	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "tabsnap",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(mcpSrv)

	slog.Info("MCP stdio starting")
	if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		slog.Error("MCP server", "error", err)
		os.Exit(1)
	}
}

func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := artifact.Inspect(f)
	if err != nil {
		return err
	}
	fmt.Printf("title:    %s\n", sum.Title)
	fmt.Printf("artifact: %s\n", sum.ArtifactID)
	fmt.Printf("cards:    %d\n", len(sum.Cards))
	fmt.Printf("sessions: %d\n", len(sum.SessionOptions))
	fmt.Printf("domains:  %d\n", len(sum.DomainOptions))
	return nil
}

func runConvert(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := artifact.ToMarkdown(string(data))
	if err != nil {
		return err
	}
	fmt.Print(md)
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
