package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration. It is loaded once at startup
// and passed into collaborators; nothing reads the environment after Load
// returns.
type Config struct {
	Env  string
	Port string

	MongoURI string
	DBName   string

	JWTSecret string
	TokenTTL  time.Duration

	GithubClientID     string
	GithubClientSecret string

	// CascadeDeletePosts controls whether deleting a user also deletes the
	// posts they authored. Off by default: historical posts keep their
	// author snapshot and survive the account.
	CascadeDeletePosts bool

	AllowOrigins []string
}

// Load reads .env (if present) and the environment into a Config.
// JWT_SECRET and MONGODB_URI are required; everything else has defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getenv("APP_ENV", "development"),
		Port:               getenv("PORT", "8080"),
		MongoURI:           os.Getenv("MONGODB_URI"),
		DBName:             getenv("DB_NAME", "devconnect"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GithubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GithubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
	}

	if cfg.JWTSecret == "" || cfg.MongoURI == "" {
		return nil, fmt.Errorf("config: JWT_SECRET and MONGODB_URI must be set")
	}

	ttl, err := strconv.Atoi(getenv("TOKEN_TTL", "360000"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be a positive number of seconds")
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	cfg.CascadeDeletePosts = getenv("CASCADE_DELETE_POSTS", "false") == "true"

	origins := getenv("ALLOW_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
