package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/BTreeMap/JourneyMap/internal/api"
	"github.com/BTreeMap/JourneyMap/internal/lockfile"
	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/provider"
	"github.com/BTreeMap/JourneyMap/internal/session"
	"github.com/BTreeMap/JourneyMap/internal/store"
	"github.com/BTreeMap/JourneyMap/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for JourneyMap state data
	DefaultStateDir = "/var/lib/journeymap"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "journeymap.db"
	// MemoryDSN selects the in-memory journey store.
	MemoryDSN = "memory"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// Hold an exclusive lock on the state directory so two instances never
	// share the same SQLite database.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err, "state_dir", *flags.stateDir)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := openStore(flags)
	if err != nil {
		slog.Error("Failed to open journey store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	mgr, err := buildSessionManager(config, flags, st)
	if err != nil {
		slog.Error("Failed to build session manager", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping JourneyMap",
		"state_dir", *flags.stateDir,
		"dsn_set", *flags.dbDSN != "",
		"api_addr", *flags.apiAddr,
		"fallback", *flags.fallback)

	srv := api.NewServer(mgr, st, buildAPIOptions(flags)...)
	if err := srv.Run(ctx); err != nil {
		slog.Error("JourneyMap failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("JourneyMap exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL     string
	StateDir        string
	APIAddr         string
	GeminiKey       string
	OpenAIKey       string
	DeepSeekKey     string
	DeepSeekBaseURL string
	DefaultProvider string
	DebounceMs      int
	MaxSessions     int
	FallbackEnabled bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir        *string
	dbDSN           *string
	apiAddr         *string
	geminiKey       *string
	openaiKey       *string
	deepseekKey     *string
	deepseekBaseURL *string
	debounceMs      *int
	fallback        *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
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
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        os.Getenv("JOURNEYMAP_STATE_DIR"),
		APIAddr:         os.Getenv("API_ADDR"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		DeepSeekKey:     os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL: os.Getenv("DEEPSEEK_BASE_URL"),
		DefaultProvider: os.Getenv("JOURNEYMAP_DEFAULT_PROVIDER"),
		DebounceMs:      util.ParseIntEnv("JOURNEYMAP_DEBOUNCE_MS", 0),
		MaxSessions:     util.ParseIntEnv("JOURNEYMAP_MAX_SESSIONS", 0),
		FallbackEnabled: util.ParseBoolEnv("JOURNEYMAP_FALLBACK", true),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No JOURNEYMAP_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("JOURNEYMAP_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// With no database URL, default to SQLite in the state directory.
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"JOURNEYMAP_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"GEMINI_API_KEY_SET", config.GeminiKey != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"DEEPSEEK_API_KEY_SET", config.DeepSeekKey != "",
		"DEEPSEEK_BASE_URL", config.DeepSeekBaseURL,
		"JOURNEYMAP_DEFAULT_PROVIDER", config.DefaultProvider,
		"JOURNEYMAP_DEBOUNCE_MS", config.DebounceMs,
		"JOURNEYMAP_MAX_SESSIONS", config.MaxSessions,
		"JOURNEYMAP_FALLBACK", config.FallbackEnabled)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:        flag.String("state-dir", config.StateDir, "state directory for JourneyMap data (overrides $JOURNEYMAP_STATE_DIR)"),
		dbDSN:           flag.String("db-dsn", config.DatabaseURL, "database DSN for the journey store, or \"memory\" (overrides $DATABASE_URL)"),
		apiAddr:         flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		geminiKey:       flag.String("gemini-api-key", config.GeminiKey, "server-side Gemini API key (overrides $GEMINI_API_KEY)"),
		openaiKey:       flag.String("openai-api-key", config.OpenAIKey, "server-side OpenAI API key (overrides $OPENAI_API_KEY)"),
		deepseekKey:     flag.String("deepseek-api-key", config.DeepSeekKey, "server-side DeepSeek API key (overrides $DEEPSEEK_API_KEY)"),
		deepseekBaseURL: flag.String("deepseek-base-url", config.DeepSeekBaseURL, "DeepSeek API base URL (overrides $DEEPSEEK_BASE_URL)"),
		debounceMs:      flag.Int("debounce-ms", config.DebounceMs, "variable-change regeneration debounce in milliseconds, 0 for the default (overrides $JOURNEYMAP_DEBOUNCE_MS)"),
		fallback:        flag.Bool("fallback", config.FallbackEnabled, "substitute the offline demo journey when generation fails (overrides $JOURNEYMAP_FALLBACK)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"geminiKeySet", *flags.geminiKey != "",
		"openaiKeySet", *flags.openaiKey != "",
		"deepseekKeySet", *flags.deepseekKey != "",
		"deepseekBaseURL", *flags.deepseekBaseURL,
		"debounceMs", *flags.debounceMs,
		"fallback", *flags.fallback)

	// Re-derive the default SQLite path when only the state directory moved.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// openStore selects and opens the journey store backend from the DSN.
func openStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn == MemoryDSN {
		slog.Debug("Using in-memory journey store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == store.DSNTypePostgres {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_set", true)
		return store.NewPostgresStore(store.WithDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithDSN(dsn))
}

// buildSessionManager wires the provider client, server-side default keys
// and the journey store into a session manager.
func buildSessionManager(config Config, flags Flags, st store.Store) (*session.Manager, error) {
	var providerOpts []provider.Option
	if *flags.deepseekBaseURL != "" {
		providerOpts = append(providerOpts, provider.WithDeepSeekBaseURL(*flags.deepseekBaseURL))
	}
	gen := provider.NewClient(providerOpts...)

	defaultKeys := map[models.Provider]string{
		models.ProviderGemini:   *flags.geminiKey,
		models.ProviderChatGPT:  *flags.openaiKey,
		models.ProviderDeepSeek: *flags.deepseekKey,
	}

	sessionOpts := []session.Option{
		session.WithGenerator(gen),
		session.WithRecorder(st),
		session.WithDefaultKeys(defaultKeys),
		session.WithFallback(*flags.fallback),
	}
	if *flags.debounceMs > 0 {
		sessionOpts = append(sessionOpts, session.WithDebounceDelay(time.Duration(*flags.debounceMs)*time.Millisecond))
	}
	if config.DefaultProvider != "" {
		p := models.Provider(config.DefaultProvider)
		if !models.IsValidProvider(p) {
			slog.Warn("Invalid JOURNEYMAP_DEFAULT_PROVIDER, ignoring", "value", config.DefaultProvider)
		} else {
			sessionOpts = append(sessionOpts, session.WithDefaultProvider(p))
		}
	}

	return session.NewManager(config.MaxSessions, sessionOpts...)
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
