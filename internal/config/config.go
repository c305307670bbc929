package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/spf13/viper"
)

// Config holds the application configuration parameters.
type Config struct {
	DBConn  string
	BaseURL string
	Collect CollectDefaults

	AIAPIKey string
	LogLevel string
}

// CollectDefaults are the collection options applied when the caller does not
// override them per run.
type CollectDefaults struct {
	MaxStores               int
	IncludePointsPrograms   bool
	IncludeCashbackPrograms bool
	IncludeBonusPromotions  bool
	NavTimeout              time.Duration
	FetchTimeout            time.Duration
}

// Global constants for configuration keys
const (
	DBHostKey     = "DB_HOST"
	DBPortKey     = "DB_PORT"
	DBUserKey     = "DB_USER"
	DBPasswordKey = "DB_PASSWORD"
	DBNameKey     = "DB_NAME"
	BaseURLKey    = "base_url"
	MaxStoresKey  = "max_stores"
	PointsKey     = "include_points_programs"
	CashbackKey   = "include_cashback_programs"
	BonusKey      = "include_bonus_promotions"
	NavTimeoutKey = "nav_timeout_seconds"
	FetchTimeKey  = "fetch_timeout_seconds"
	AIKey         = "AI_API_KEY"
	LogLevelKey   = "log_level"
)

// Init initializes Viper, sets defaults, and constructs the DSN.
func Init() *Config {
	_ = godotenv.Load(".env")

	// --- File-based configuration ---
	viper.SetConfigName("config") // name of config file (e.g., config.yaml)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // look in the current directory

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found; this is not an error, we can rely on defaults/env
			log.Println("config.yaml not found, using defaults and environment variables.")
		}
	}

	// Set up Viper to read environment variables
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	viper.SetDefault(BaseURLKey, "https://www.comparemania.com.br")
	viper.SetDefault(MaxStoresKey, 10)
	viper.SetDefault(PointsKey, true)
	viper.SetDefault(CashbackKey, true)
	viper.SetDefault(BonusKey, true)
	viper.SetDefault(NavTimeoutKey, 45)
	viper.SetDefault(FetchTimeKey, 15)
	viper.SetDefault(LogLevelKey, "info")

	viper.OnConfigChange(func(e fsnotify.Event) {
	})

	viper.WatchConfig()

	return &Config{
		DBConn:  buildDSN(),
		BaseURL: viper.GetString(BaseURLKey),
		Collect: CollectDefaults{
			MaxStores:               viper.GetInt(MaxStoresKey),
			IncludePointsPrograms:   viper.GetBool(PointsKey),
			IncludeCashbackPrograms: viper.GetBool(CashbackKey),
			IncludeBonusPromotions:  viper.GetBool(BonusKey),
			NavTimeout:              time.Duration(viper.GetInt(NavTimeoutKey)) * time.Second,
			FetchTimeout:            time.Duration(viper.GetInt(FetchTimeKey)) * time.Second,
		},
		AIAPIKey: viper.GetString(AIKey),
		LogLevel: viper.GetString(LogLevelKey),
	}
}

// buildDSN constructs the PostgreSQL DSN from individual config values read by Viper.
func buildDSN() string {
	host := viper.GetString(DBHostKey)
	port := viper.GetString(DBPortKey)
	user := viper.GetString(DBUserKey)
	password := viper.GetString(DBPasswordKey)
	dbname := viper.GetString(DBNameKey)

	if host == "" || user == "" || dbname == "" {
		log.Fatalf("Fatal Error: Missing mandatory database configuration (Host: %s, User: %s, DB Name: %s). Check ENV variables or config file.", host, user, dbname)
	}

	// Standard PostgreSQL DSN format
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=America/Sao_Paulo",
		host, user, password, dbname, port,
	)
	return dsn
}
