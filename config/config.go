package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Location    string
	ListingType string
	Limit       int

	Source        string
	InputPath     string
	SearchBaseURL string
	UserAgent     string
	TimeoutSec    int
	RateLimitMs   int
	MaxRetries    int
	MaxPages      int
	ChromeBin     string

	CoordStrategy string
	ZonesFile     string
	Seed          int64

	OutputPath string
	RawCSVPath string

	StorePostgres    bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ServeAddr string
	LogLevel  string

	// EnvFileErr is set when the .env file could not be loaded and only
	// system env vars were used.
	EnvFileErr error
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Variables already set in
// the environment take precedence over the file.
func LoadFile(path string) *Config {
	envErr := godotenv.Load(path)

	return &Config{
		Location:    getEnv("HARVEST_LOCATION", "Miami-Dade County, FL"),
		ListingType: getEnv("HARVEST_LISTING_TYPE", "for_sale"),
		Limit:       getEnvInt("HARVEST_LIMIT", 500),

		Source:        getEnv("HARVEST_SOURCE", "http"),
		InputPath:     getEnv("HARVEST_INPUT", ""),
		SearchBaseURL: strings.TrimRight(getEnv("SEARCH_BASE_URL", "https://www.realtor.com"), "/"),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		TimeoutSec:  getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		RateLimitMs: getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),
		MaxPages:    getEnvInt("MAX_PAGES", 25),
		ChromeBin:   getEnv("CHROME_BIN", ""),

		CoordStrategy: getEnv("COORD_STRATEGY", "land"),
		ZonesFile:     getEnv("ZONES_FILE", ""),
		Seed:          getEnvInt64("COORD_SEED", 0),

		OutputPath: getEnv("OUTPUT_PATH", "public/data/properties.json"),
		RawCSVPath: getEnv("RAW_CSV_PATH", ""),

		StorePostgres:    getEnvBool("STORE_POSTGRES", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "harvester"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "harvester"),
		PostgresDB:       getEnv("POSTGRES_DB", "properties"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ServeAddr: getEnv("SERVE_ADDR", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		EnvFileErr: envErr,
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
