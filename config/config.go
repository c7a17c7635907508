package config

import (
	"flag"
	"fmt"
	"kiosk/version"
	"os"
	"strconv"
	"strings"
)

// Config holds kiosk runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Port        int
	APIHost     string
	APIAllow    string // comma-separated CIDRs or IPs; empty admits all
	APIDeny     string

	ExhibitDBPath string
	AssetRoot     string
	SceneArchive  string
	SceneFile     string
	SettingsDir   string // empty means ~/.mdcvis
	Language      string

	SQLiteBusyTimeoutMS  int
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	DiagnosticsCapacity int

	CLIMode   bool
	CLIServer string // empty means the default entry from cli.yaml
}

// Settings is the process configuration populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = Defaults()
}

// Defaults builds a Config from environment variables, falling back to built-in values.
func Defaults() *Config {
	return &Config{
		LogLevel:    strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogFilePath: getEnv("LOG_FILE", "./kiosk.log"),
		Port:        getEnvInt("PORT", 7790),
		APIHost:     getEnv("API_HOST", "127.0.0.1"),
		APIAllow:    getEnv("API_ALLOW", ""),
		APIDeny:     getEnv("API_DENY", ""),

		ExhibitDBPath: getEnv("EXHIBIT_DB", "exhibits/mdc.db"),
		AssetRoot:     getEnv("ASSET_ROOT", "exhibits"),
		SceneArchive:  getEnv("SCENE_ARCHIVE", "mdc.zip"),
		SceneFile:     getEnv("SCENE_FILE", "scene.xml"),
		SettingsDir:   getEnv("SETTINGS_DIR", ""),
		Language:      getEnv("KIOSK_LANG", "es"),

		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		DiagnosticsCapacity: getEnvInt("DIAGNOSTICS_CAPACITY", 100),

		CLIMode: getEnvBool("CLI_MODE", false),
	}
}

// Debug reports whether verbose logging was requested.
func (c *Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

// ParseFlags parses command-line flags and applies overrides to Settings.
// -help and -version print and exit.
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Museo de Ciencias exhibit kiosk\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path, empty for stderr (default ./kiosk.log)")
		fmt.Fprintln(out, "  PORT                              HTTP API port (default 7790)")
		fmt.Fprintln(out, "  API_HOST                          HTTP API bind address (default 127.0.0.1)")
		fmt.Fprintln(out, "  API_ALLOW                         Comma-separated CIDRs/IPs allowed to use the API")
		fmt.Fprintln(out, "  API_DENY                          Comma-separated CIDRs/IPs denied the API")
		fmt.Fprintln(out, "  EXHIBIT_DB                        Exhibit database path (default exhibits/mdc.db)")
		fmt.Fprintln(out, "  ASSET_ROOT                        Directory prefix for exhibit models (default exhibits)")
		fmt.Fprintln(out, "  SCENE_ARCHIVE                     Archive holding the scene descriptor (default mdc.zip)")
		fmt.Fprintln(out, "  SCENE_FILE                        Scene descriptor name (default scene.xml)")
		fmt.Fprintln(out, "  SETTINGS_DIR                      Per-user settings directory (default ~/.mdcvis)")
		fmt.Fprintln(out, "  KIOSK_LANG                        Language for default texts: es, en (default es)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_IDLE_SECONDS      SQLite ConnMaxIdleTime in seconds (default 300)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_LIFETIME_SECONDS  SQLite ConnMaxLifetime in seconds (default 0)")
		fmt.Fprintln(out, "  DIAGNOSTICS_CAPACITY              Recent diagnostics kept in memory (default 100)")
		fmt.Fprintln(out, "  CLI_MODE                          Start the operator console (true/false)")
	}

	port := flag.Int("port", Settings.Port, "HTTP API port (overrides PORT)")
	host := flag.String("host", Settings.APIHost, "HTTP API bind address (overrides API_HOST)")
	db := flag.String("db", Settings.ExhibitDBPath, "Exhibit database path (overrides EXHIBIT_DB)")
	assets := flag.String("assets", Settings.AssetRoot, "Exhibit asset directory (overrides ASSET_ROOT)")
	sceneArchive := flag.String("scene-archive", Settings.SceneArchive, "Scene archive (overrides SCENE_ARCHIVE)")
	sceneFile := flag.String("scene", Settings.SceneFile, "Scene descriptor name (overrides SCENE_FILE)")
	settingsDir := flag.String("settings-dir", Settings.SettingsDir, "Per-user settings directory (overrides SETTINGS_DIR)")
	lang := flag.String("lang", Settings.Language, "Language for default texts (overrides KIOSK_LANG)")
	busyTimeout := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	maxOpen := flag.Int("sqlite-max-open-conns", Settings.SQLiteMaxOpenConns, "SQLite MaxOpenConns (overrides SQLITE_MAX_OPEN_CONNS)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run the operator console instead of the kiosk")
	cliServer := flag.String("server", "", "Kiosk API URL for console mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.APIHost = *host
	Settings.ExhibitDBPath = *db
	Settings.AssetRoot = *assets
	Settings.SceneArchive = *sceneArchive
	Settings.SceneFile = *sceneFile
	Settings.SettingsDir = *settingsDir
	Settings.Language = strings.ToLower(strings.TrimSpace(*lang))
	Settings.SQLiteBusyTimeoutMS = *busyTimeout
	Settings.SQLiteMaxOpenConns = *maxOpen
	Settings.LogLevel = strings.ToUpper(*logLevel)
	Settings.LogFilePath = *logFile
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
