package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultCrawlURL is the listing search the crawl job targets when CRAWL_URL is unset.
const DefaultCrawlURL = "https://www.rightmove.co.uk/property-for-sale/find.html?searchType=SALE" +
	"&locationIdentifier=REGION%5E93922&insId=1&radius=0.0&minPrice=&maxPrice=500000&minBedrooms=2" +
	"&displayPropertyType=&maxDaysSinceAdded=&sortByPriceDescending=&_includeSSTC=on" +
	"&primaryDisplayPropertyType=&secondaryDisplayPropertyType=&oldDisplayPropertyType=" +
	"&oldPrimaryDisplayPropertyType=&letType=&letFurnishType=&houseFlatShare="

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	LogLevel   string
	LogFormat  string

	PropertyCSVPath string
	ActivityCSVPath string
	WebURLJSONPath  string

	PageSize       int
	MaxPageSize    int
	PageSizeRandom bool
	PageSizeSeed   int64
	RankBy         string
	ImageLookup    string

	CrawlURL       string
	PagesToScrape  int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	CSVOutputPath  string
	ChromeBin      string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "console"),

		PropertyCSVPath: getEnv("PROPERTY_CSV", "data/property.csv"),
		ActivityCSVPath: getEnv("ACTIVITY_CSV", "data/user_activity.csv"),
		WebURLJSONPath:  getEnv("WEB_URL_JSON", "data/web_url.json"),

		PageSize:       getEnvInt("PAGE_SIZE", 10),
		MaxPageSize:    getEnvInt("MAX_PAGE_SIZE", 1000),
		PageSizeRandom: getEnvBool("PAGE_SIZE_RANDOM", false),
		PageSizeSeed:   int64(getEnvInt("PAGE_SIZE_SEED", 1)),
		RankBy:         strings.ToLower(getEnv("RANK_BY", "identifier")),
		ImageLookup:    strings.ToLower(getEnv("IMAGE_LOOKUP", "literal")),

		CrawlURL:       getEnv("CRAWL_URL", DefaultCrawlURL),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 1),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/properties.csv"),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "scrapping_pbs"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
