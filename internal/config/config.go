package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Timezone string // IANA zone the business rules run in (default America/Santiago)

	MinBookingMin   int // minimum reservation length in minutes
	MaxBookingMin   int // maximum reservation length in minutes
	MaxAdvanceMonth int // how many months ahead a reservation may start

	CalendarBaseURL      string // calendar events API root; empty disables sync
	CalendarTokenURL     string // OAuth2 token endpoint for refreshing calendar tokens
	CalendarClientID     string
	CalendarClientSecret string
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		Timezone: envStr("APP_TIMEZONE", "America/Santiago"),

		MinBookingMin:   envInt("BOOKING_MIN_MINUTES", 15),
		MaxBookingMin:   envInt("BOOKING_MAX_MINUTES", 60),
		MaxAdvanceMonth: envInt("BOOKING_MAX_ADVANCE_MONTHS", 3),

		CalendarBaseURL:      os.Getenv("CALENDAR_API_BASE_URL"),
		CalendarTokenURL:     os.Getenv("CALENDAR_TOKEN_URL"),
		CalendarClientID:     os.Getenv("CALENDAR_CLIENT_ID"),
		CalendarClientSecret: os.Getenv("CALENDAR_CLIENT_SECRET"),
	}
}

// Location resolves the configured timezone, exiting on an unknown
// zone name so a misconfigured deployment fails fast at startup.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", c.Timezone, err)
	}
	return loc
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error and
// exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
