package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CampusLoop/CoursePilot/internal/api"
	"github.com/CampusLoop/CoursePilot/internal/extractor"
	"github.com/CampusLoop/CoursePilot/internal/store"
	"github.com/CampusLoop/CoursePilot/internal/util"
	"github.com/CampusLoop/CoursePilot/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CoursePilot state data
	DefaultStateDir = "/var/lib/coursepilot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "coursepilot.db"
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

	// Build module options
	waOpts := buildWhatsAppOptions(flags)
	storeOpts := buildStoreOptions(flags)
	extOpts := buildExtractorOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping CoursePilot with configured modules")
	slog.Debug("Module options counts", "whatsapp", len(waOpts), "store", len(storeOpts), "extractor", len(extOpts), "api", len(apiOpts))
	if err := api.Run(waOpts, storeOpts, extOpts, apiOpts); err != nil {
		slog.Error("CoursePilot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("CoursePilot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	WhatsAppDSN  string
	StateDir     string
	OpenAIKey    string
	APIAddr      string
	AlertNumber  string
	CancelNotice bool
	WhatsApp     bool
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	whatsappDSN  *string
	openaiKey    *string
	apiAddr      *string
	alertNumber  *string
	cancelNotice *bool
	whatsappOn   *bool
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
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		WhatsAppDSN:  os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:     os.Getenv("COURSEPILOT_STATE_DIR"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		APIAddr:      os.Getenv("API_ADDR"),
		AlertNumber:  os.Getenv("ALERT_NUMBER"),
		CancelNotice: util.ParseBoolEnv("CANCEL_NOTICE", false),
		WhatsApp:     util.ParseBoolEnv("WHATSAPP_ENABLED", false),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No COURSEPILOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	// The WhatsApp session store shares the main DSN unless overridden
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = config.DatabaseURL
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"COURSEPILOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"ALERT_NUMBER_SET", config.AlertNumber != "",
		"CANCEL_NOTICE", config.CancelNotice,
		"WHATSAPP_ENABLED", config.WhatsApp)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write WhatsApp login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for CoursePilot data (overrides $COURSEPILOT_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the classroom store (overrides $DATABASE_URL)"),
		whatsappDSN:  flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp session store (overrides $WHATSAPP_DB_DSN)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for the LLM extractor (overrides $OPENAI_API_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		alertNumber:  flag.String("alert-number", config.AlertNumber, "phone number for SMS alerts and reminders (overrides $ALERT_NUMBER)"),
		cancelNotice: flag.Bool("cancel-notice", config.CancelNotice, "announce when a new request supersedes an in-flight one (overrides $CANCEL_NOTICE)"),
		whatsappOn:   flag.Bool("whatsapp", config.WhatsApp, "enable the WhatsApp conversation channel (overrides $WHATSAPP_ENABLED)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"whatsappDSN_set", *flags.whatsappDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"alertNumber_set", *flags.alertNumber != "",
		"cancelNotice", *flags.cancelNotice,
		"whatsapp", *flags.whatsappOn)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.whatsappDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.whatsappDSN))
	}
	return waOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildExtractorOptions constructs LLM extractor configuration options
func buildExtractorOptions(flags Flags) []extractor.OpenAIOption {
	var extOpts []extractor.OpenAIOption
	if *flags.openaiKey != "" {
		extOpts = append(extOpts, extractor.WithAPIKey(*flags.openaiKey))
	}
	return extOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.alertNumber != "" {
		apiOpts = append(apiOpts, api.WithAlertNumber(*flags.alertNumber))
	}
	if *flags.cancelNotice {
		apiOpts = append(apiOpts, api.WithCancelNotice())
	}
	if *flags.whatsappOn {
		apiOpts = append(apiOpts, api.WithWhatsApp())
	}
	return apiOpts
}
