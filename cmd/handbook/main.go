// Package main is the handbook CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/checklist"
	"github.com/mcd-community/handbook/internal/cli"
	"github.com/mcd-community/handbook/internal/config"
	"github.com/mcd-community/handbook/internal/export"
	"github.com/mcd-community/handbook/internal/handbook"
	"github.com/mcd-community/handbook/internal/keyword"
	"github.com/mcd-community/handbook/internal/mcpserver"
	"github.com/mcd-community/handbook/internal/models"
	"github.com/mcd-community/handbook/internal/render"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/internal/server"
	"github.com/mcd-community/handbook/internal/session"
	"github.com/mcd-community/handbook/internal/storage"
	"github.com/mcd-community/handbook/internal/tui"
	"github.com/mcd-community/handbook/internal/watcher"
	"github.com/mcd-community/handbook/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/handbook/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When the default file
// does not exist either, built-in defaults are used and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "show":
		runShow()
	case "browse":
		runBrowse()
	case "checklist":
		runChecklist()
	case "export":
		runExport()
	case "mcp":
		runMCP()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("handbook version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// writeDefaultConfig writes a config file holding every default to path.
// An existing file is only replaced when force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return config.Save(path, config.Default())
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path to write")
	force := fs.Bool("force", false, "overwrite an existing config")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*configPath, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
}

// mustConfig loads the config and builds a logger, exiting on failure.
func mustConfig(path string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := mustConfig(*configPath, *debug)
	defer logger.Sync()
	if *debug {
		cfg.Debug = true
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components.Sessions.Start(ctx)

	if cfg.Content.Watch && cfg.Content.Path != "" {
		content := components.Content
		watchSvc := watcher.NewWatcher(cfg.Content.Path, func(path string) {
			if err := content.Reload(); err != nil {
				logger.Warn("content reload failed", zap.String("path", path), zap.Error(err))
			}
		}, watcher.WithLogger(logger))
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Engine,
		components.Content,
		components.Sessions,
		components.Checklist,
		components.Progress,
		cfg,
		logger,
		version,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: handbook search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
The default substring mode returns the first occurrence of the query in every
content item, in handbook order. --mode ranked orders items by relevance and
--fuzzy tolerates typos in ranked mode.

Examples:
  handbook search verify
  handbook search "shift log"
  handbook search --mode ranked --fuzzy direktor
  handbook search --output json clearance
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = search the content directly)")
	limit := fs.Int("limit", 0, "maximum number of results (0 = config default_limit)")
	mode := fs.String("mode", "", "search mode: substring or ranked (empty = config default_mode)")
	fuzzy := fs.Bool("fuzzy", false, "typo-tolerant matching (ranked mode)")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query: queryStr,
		Mode:  models.SearchMode(*mode),
		Fuzzy: *fuzzy,
		Limit: *limit,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, searchQuery)
	} else {
		cfg, _, logger := mustConfig(*configPath, false)
		defer logger.Sync()
		if searchQuery.Limit == 0 {
			searchQuery.Limit = cfg.Search.DefaultLimit
		}
		content, cerr := initializeContent(cfg, logger)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", cerr)
			os.Exit(1)
		}
		defer content.Close()
		response, err = content.Engine.Search(context.Background(), searchQuery)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	highlight := fs.String("highlight", "", "emphasize every occurrence of this term")
	width := fs.Int("width", 80, "wrap width")
	raw := fs.Bool("raw", false, "print markdown without terminal rendering")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	cfg, _, logger := mustConfig(*configPath, false)
	defer logger.Sync()
	content, err := handbook.NewStore(cfg.Content.Path, handbook.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Println("Usage: handbook show [flags] <section-id>")
		fmt.Println()
		fmt.Println("Sections:")
		for _, s := range content.Sections() {
			fmt.Printf("  %-16s %s\n", s.ID, s.Title)
		}
		os.Exit(1)
	}
	section, err := content.Section(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	md := render.SectionMarkdown(section, *highlight)
	if *raw {
		fmt.Print(md)
		return
	}
	out, err := render.Terminal(md, *width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

func runBrowse() {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	logFile := fs.String("log-file", "", "write logs to this file (empty = discard)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewFileLogger(cfg.Debug, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	content, err := handbook.NewStore(cfg.Content.Path, handbook.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}
	model := tui.New(content.Handbook().Title, content, session.WithSearchFunc(windowedSearch(cfg.Search.ContextChars)))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Browser failed: %v\n", err)
		os.Exit(1)
	}
}

// windowedSearch returns a session search function using the configured context width.
func windowedSearch(contextChars int) session.SearchFunc {
	return func(sections []models.Section, query string) []models.SearchResult {
		return search.SearchWindow(sections, query, contextChars)
	}
}

// defaultProfile names the checklist profile used when --profile is not set.
func defaultProfile() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func printChecklistUsage() {
	fmt.Println("Usage: handbook checklist <list|done|undo|reset|import|export> [flags] [args]")
	fmt.Println("  handbook checklist list             Show checklist progress")
	fmt.Println("  handbook checklist done <item>      Mark an item complete")
	fmt.Println("  handbook checklist undo <item>      Mark an item incomplete")
	fmt.Println("  handbook checklist reset            Clear all progress")
	fmt.Println("  handbook checklist import <file>    Import a saved browser checklist (JSON)")
	fmt.Println("  handbook checklist export           Print progress as browser checklist JSON")
}

func runChecklist() {
	if len(os.Args) < 3 {
		printChecklistUsage()
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("checklist", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	profile := fs.String("profile", defaultProfile(), "checklist profile id")
	_ = fs.Parse(searchArgsReorder(os.Args[3:]))

	cfg, _, logger := mustConfig(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	svc := components.Checklist
	switch sub {
	case "list":
		cli.WriteChecklist(os.Stdout, *profile, svc.Checklist(ctx, *profile))
	case "done", "undo":
		if fs.NArg() < 1 {
			fmt.Printf("Usage: handbook checklist %s <item>\n", sub)
			os.Exit(1)
		}
		if err := svc.SetCompleted(ctx, *profile, fs.Arg(0), sub == "done"); err != nil {
			fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
			os.Exit(1)
		}
		cli.WriteChecklist(os.Stdout, *profile, svc.Checklist(ctx, *profile))
	case "reset":
		if err := svc.Reset(ctx, *profile); err != nil {
			fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Checklist progress cleared for %s\n", *profile)
	case "import":
		if fs.NArg() < 1 {
			fmt.Println("Usage: handbook checklist import <file>")
			os.Exit(1)
		}
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
			os.Exit(1)
		}
		n, err := svc.ImportLegacy(ctx, *profile, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d item(s) for %s\n", n, *profile)
	case "export":
		data, err := svc.ExportLegacy(ctx, *profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("Unknown checklist subcommand: %s\n", sub)
		printChecklistUsage()
		os.Exit(1)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("o", "handbook.xlsx", "output workbook path")
	profile := fs.String("profile", "", "include checklist progress for this profile")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustConfig(*configPath, false)
	defer logger.Sync()

	var items []models.ChecklistItem
	var hb *models.Handbook
	if *profile != "" {
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		hb = components.Content.Handbook()
		items = components.Checklist.Checklist(context.Background(), *profile)
	} else {
		content, err := handbook.NewStore(cfg.Content.Path, handbook.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
			os.Exit(1)
		}
		hb = content.Handbook()
		items = hb.Checklist
	}

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Create failed: %v\n", err)
		os.Exit(1)
	}
	if err := export.Write(f, hb, items); err != nil {
		_ = f.Close()
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d section(s) to %s\n", len(hb.Sections), *output)
}

func runMCP() {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	logFile := fs.String("log-file", "", "write logs to this file (empty = discard)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	logger, err := utils.NewFileLogger(cfg.Debug, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	content, err := initializeContent(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer content.Close()

	s := mcpserver.NewServer(version, content.Engine, content.Content)
	if err := mcpserver.ServeStdio(s); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// statusResponse is the subset of GET /api/v1/status printed by the CLI.
type statusResponse struct {
	Version           string         `json:"version,omitempty"`
	Handbook          string         `json:"handbook"`
	ContentSource     string         `json:"content_source"`
	Sections          int            `json:"sections"`
	IndexedItems      uint64         `json:"indexed_items"`
	Sessions          *int           `json:"sessions,omitempty"`
	ChecklistProfiles int64          `json:"checklist_profiles"`
	DiskUsageBytes    *int64         `json:"disk_usage_bytes,omitempty"`
	Config            map[string]any `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = inspect local storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, logger := mustConfig(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		status, err = localStatus(context.Background(), cfg, components)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func localStatus(ctx context.Context, cfg *config.Config, c *Components) (statusResponse, error) {
	hb := c.Content.Handbook()
	profiles, err := c.Progress.CountProfiles(ctx)
	if err != nil {
		return statusResponse{}, fmt.Errorf("count profiles: %w", err)
	}
	source := cfg.Content.Path
	if source == "" {
		source = "built-in"
	}
	status := statusResponse{
		Version:           version,
		Handbook:          hb.Title,
		ContentSource:     source,
		Sections:          len(hb.Sections),
		IndexedItems:      c.Engine.IndexedItems(),
		ChecklistProfiles: profiles,
		Config: map[string]any{
			"default_mode":     cfg.Search.DefaultMode,
			"context_chars":    cfg.Search.ContextChars,
			"session_ttl":      cfg.Session.TTL.String(),
			"database_path":    cfg.Storage.DatabasePath,
			"bleve_index_path": cfg.Storage.BleveIndexPath,
		},
	}
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.BleveIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(w io.Writer, status statusResponse) {
	fmt.Fprintf(w, "handbook:            %s\n", status.Handbook)
	fmt.Fprintf(w, "content_source:      %s\n", status.ContentSource)
	fmt.Fprintf(w, "sections:            %d\n", status.Sections)
	fmt.Fprintf(w, "indexed_items:       %d   # content items in the ranked index\n", status.IndexedItems)
	fmt.Fprintf(w, "checklist_profiles:  %d\n", status.ChecklistProfiles)
	if status.Sessions != nil {
		fmt.Fprintf(w, "sessions:            %d   # live search sessions\n", *status.Sessions)
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:    %d   # progress database + index on disk\n", *status.DiskUsageBytes)
	}
	if len(status.Config) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		for _, k := range []string{"default_mode", "context_chars", "session_ttl", "database_path", "bleve_index_path"} {
			if v, ok := status.Config[k]; ok && v != "" {
				fmt.Fprintf(w, "%-20s %v\n", k+":", v)
			}
		}
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// ContentComponents holds the services needed to read and search the handbook.
type ContentComponents struct {
	Content      *handbook.Store
	KeywordIndex keyword.KeywordIndex
	Engine       *search.Engine
}

func (c *ContentComponents) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

// Components holds every initialized service.
type Components struct {
	ContentComponents
	Progress  storage.ProgressStore
	Checklist *checklist.Service
	Sessions  *session.Manager
}

func (c *Components) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.Progress != nil {
		_ = c.Progress.Close()
	}
	c.ContentComponents.Close()
}

func initializeContent(cfg *config.Config, logger *zap.Logger) (*ContentComponents, error) {
	content, err := handbook.NewStore(cfg.Content.Path, handbook.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load handbook content: %w", err)
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	engine := search.NewEngine(content, keywordIndex, &cfg.Search,
		search.WithLogger(logger),
		search.WithSpellChecker(keyword.NewSpellChecker(keywordIndex)),
	)
	if err := engine.Reindex(context.Background()); err != nil {
		_ = keywordIndex.Close()
		return nil, err
	}
	content.OnReload(func(hb *models.Handbook) {
		if err := engine.Reindex(context.Background()); err != nil {
			logger.Warn("keyword reindex after reload failed", zap.Error(err))
			return
		}
		logger.Info("handbook reloaded", zap.Int("sections", len(hb.Sections)))
	})

	return &ContentComponents{
		Content:      content,
		KeywordIndex: keywordIndex,
		Engine:       engine,
	}, nil
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	content, err := initializeContent(cfg, logger)
	if err != nil {
		return nil, err
	}

	progress, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		content.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	sessions := session.NewManager(content.Content,
		session.WithTTL(cfg.Session.TTL),
		session.WithMaxSessions(cfg.Session.MaxSessions),
		session.WithSessionOptions(session.WithSearchFunc(windowedSearch(cfg.Search.ContextChars))),
		session.WithLogger(logger),
	)

	return &Components{
		ContentComponents: *content,
		Progress:          progress,
		Checklist:         checklist.NewService(content.Content, progress, checklist.WithLogger(logger)),
		Sessions:          sessions,
	}, nil
}

func printUsage() {
	fmt.Println(`handbook - MC&D onboarding handbook

Usage:
  handbook server [flags]             Start the HTTP server
  handbook search [flags] <query>     Search the handbook
  handbook show [flags] <section>     Print a section
  handbook browse [flags]             Interactive search browser
  handbook checklist <sub> [flags]    Onboarding checklist progress
  handbook export [flags]             Write the handbook to an xlsx workbook
  handbook mcp [flags]                Serve handbook tools over MCP (stdio)
  handbook status [flags]             Show content/storage/index status
  handbook init [flags]               Write a default config file
  handbook version                    Show version
  handbook help                       Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/handbook/config.yaml)

Server Flags:
  --debug            Enable debug logging

Search Flags:
  --mode string      substring (default) or ranked
  --fuzzy            Typo-tolerant ranked matching
  --limit int        Maximum number of results
  --output string    text, compact or json
  --server string    Query a running server instead of the local content`)
}
