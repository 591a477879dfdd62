package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dmayachting/charterdesk/internal/api"
	"github.com/dmayachting/charterdesk/internal/docs"
	"github.com/dmayachting/charterdesk/internal/draft"
	"github.com/dmayachting/charterdesk/internal/flow"
	"github.com/dmayachting/charterdesk/internal/genai"
	"github.com/dmayachting/charterdesk/internal/profile"
	"github.com/dmayachting/charterdesk/internal/store"
	"github.com/dmayachting/charterdesk/internal/util"
	"github.com/dmayachting/charterdesk/internal/yacht"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CharterDesk state data
	DefaultStateDir = "/var/lib/charterdesk"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "charterdesk.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping CharterDesk with configured modules")
	if err := run(flags); err != nil {
		slog.Error("CharterDesk failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("CharterDesk exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
	OpenAIModel  string
	APIAddr      string
	YachtAPIURL  string
	YachtAPIKey  string
	ClientAPIURL string
	ClientAPIKey string
	DocsDir      string
	CloudDocsURL string
	CloudDocsKey string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	openaiModel  *string
	apiAddr      *string
	yachtAPIURL  *string
	yachtAPIKey  *string
	clientAPIURL *string
	clientAPIKey *string
	docsDir      *string
	cloudDocsURL *string
	cloudDocsKey *string
}

// initializeLogger sets up structured logging. CHARTERDESK_DEBUG=true
// lowers the level to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("CHARTERDESK_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     os.Getenv("CHARTERDESK_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		APIAddr:      os.Getenv("API_ADDR"),
		YachtAPIURL:  os.Getenv("YACHT_API_URL"),
		YachtAPIKey:  os.Getenv("YACHT_API_KEY"),
		ClientAPIURL: os.Getenv("CLIENT_API_URL"),
		ClientAPIKey: os.Getenv("CLIENT_API_KEY"),
		DocsDir:      os.Getenv("DOCS_DIR"),
		CloudDocsURL: os.Getenv("CLOUD_SEARCH_URL"),
		CloudDocsKey: os.Getenv("CLOUD_SEARCH_API_KEY"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No CHARTERDESK_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"CHARTERDESK_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"YACHT_API_URL_SET", config.YachtAPIURL != "",
		"CLIENT_API_URL_SET", config.ClientAPIURL != "",
		"DOCS_DIR", config.DocsDir,
		"CLOUD_SEARCH_URL_SET", config.CloudDocsURL != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for CharterDesk data (overrides $CHARTERDESK_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the conversation state store (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		yachtAPIURL:  flag.String("yacht-api-url", config.YachtAPIURL, "yacht availability API base URL (overrides $YACHT_API_URL)"),
		yachtAPIKey:  flag.String("yacht-api-key", config.YachtAPIKey, "yacht availability API key (overrides $YACHT_API_KEY)"),
		clientAPIURL: flag.String("client-api-url", config.ClientAPIURL, "client profile API base URL (overrides $CLIENT_API_URL)"),
		clientAPIKey: flag.String("client-api-key", config.ClientAPIKey, "client profile API key (overrides $CLIENT_API_KEY)"),
		docsDir:      flag.String("docs-dir", config.DocsDir, "directory of local document JSON files (overrides $DOCS_DIR)"),
		cloudDocsURL: flag.String("cloud-search-url", config.CloudDocsURL, "cloud document search base URL (overrides $CLOUD_SEARCH_URL)"),
		cloudDocsKey: flag.String("cloud-search-api-key", config.CloudDocsKey, "cloud document search API key (overrides $CLOUD_SEARCH_API_KEY)"),
	}

	flag.Parse()

	// Keep the SQLite default in step when only the state directory moved.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr)

	return flags
}

// isPostgresDSN reports whether the DSN targets Postgres rather than a
// SQLite file path.
func isPostgresDSN(dsn string) bool {
	return strings.Contains(dsn, "postgres://") || strings.Contains(dsn, "host=")
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !isPostgresDSN(*flags.dbDSN) {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore opens the conversation state store for the configured DSN.
func buildStore(flags Flags) (store.Store, error) {
	if isPostgresDSN(*flags.dbDSN) {
		slog.Debug("Using Postgres conversation state store")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Using SQLite conversation state store", "path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// buildFlowOptions wires the optional collaborators that are configured.
func buildFlowOptions(flags Flags) []flow.Option {
	var opts []flow.Option

	if *flags.clientAPIURL != "" {
		profileOpts := []profile.Option{profile.WithBaseURL(*flags.clientAPIURL)}
		if *flags.clientAPIKey != "" {
			profileOpts = append(profileOpts, profile.WithAPIKey(*flags.clientAPIKey))
		}
		opts = append(opts, flow.WithProfiles(profile.NewService(profileOpts...)))
	}

	var local, cloud flow.DocumentSearcher
	if *flags.docsDir != "" {
		index, err := docs.NewIndex(*flags.docsDir)
		if err != nil {
			slog.Error("Failed to load local document index, continuing without it", "dir", *flags.docsDir, "error", err)
		} else {
			local = index
		}
	}
	if *flags.cloudDocsURL != "" {
		cloudOpts := []docs.CloudOption{docs.WithCloudBaseURL(*flags.cloudDocsURL)}
		if *flags.cloudDocsKey != "" {
			cloudOpts = append(cloudOpts, docs.WithCloudAPIKey(*flags.cloudDocsKey))
		}
		cloud = docs.NewCloudSearch(cloudOpts...)
	}
	if local != nil || cloud != nil {
		opts = append(opts, flow.WithDocumentSources(local, cloud))
	}

	yachtOpts := []yacht.Option{
		yacht.WithCacheTTL(util.ParseDurationEnv("YACHT_CACHE_TTL", yacht.DefaultCacheTTL)),
	}
	if *flags.yachtAPIURL != "" {
		yachtOpts = append(yachtOpts, yacht.WithBaseURL(*flags.yachtAPIURL))
	}
	if *flags.yachtAPIKey != "" {
		yachtOpts = append(yachtOpts, yacht.WithAPIKey(*flags.yachtAPIKey))
	}
	opts = append(opts, flow.WithAvailability(yacht.NewService(yachtOpts...)))

	return opts
}

// run assembles the modules and serves until interrupted.
func run(flags Flags) error {
	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close state store", "error", err)
		}
	}()

	var genaiOpts []genai.Option
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	genaiClient, err := genai.NewClient(*flags.openaiKey, genaiOpts...)
	if err != nil {
		return err
	}

	states := flow.NewStateManager(st)
	charterFlow := flow.NewCharterFlow(states, genaiClient, buildFlowOptions(flags)...)

	apiOpts := []api.Option{api.WithDraftService(draft.NewService(genaiClient))}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	server := api.NewServer(charterFlow, apiOpts...)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
