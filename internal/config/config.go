package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// MemoryDatabaseURL selects the in-process store instead of PostgreSQL.
	MemoryDatabaseURL = "memory://"

	defaultDatabaseURL    = "postgres://localhost:5432/eventbot?sslmode=disable"
	defaultMigrationsPath = "migrations"
	defaultLocale         = "en"
	defaultTickInterval   = time.Minute
	defaultCommandPrefix  = "!"
)

type Config struct {
	Token          string
	GuildID        string
	DatabaseURL    string
	MigrationsPath string
	RedisURL       string
	MetricsAddr    string
	Locale         string
	TickInterval   time.Duration
	CommandPrefix  string
}

// Load charge la configuration depuis .env (optionnel) puis l'environnement, et la valide.
func Load() (*Config, error) {
	// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv construit la configuration à partir de getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Token:          strings.TrimSpace(getenv("TOKEN")),
		GuildID:        strings.TrimSpace(getenv("GUILD_ID")),
		DatabaseURL:    strings.TrimSpace(getenv("DATABASE_URL")),
		MigrationsPath: strings.TrimSpace(getenv("MIGRATIONS_PATH")),
		RedisURL:       strings.TrimSpace(getenv("REDIS_URL")),
		MetricsAddr:    strings.TrimSpace(getenv("METRICS_ADDR")),
		Locale:         strings.TrimSpace(getenv("LOCALE")),
		CommandPrefix:  strings.TrimSpace(getenv("COMMAND_PREFIX")),
		TickInterval:   defaultTickInterval,
	}

	if raw := strings.TrimSpace(getenv("TICK_INTERVAL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: TICK_INTERVAL invalide (%q): %w", raw, err)
		}
		cfg.TickInterval = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesMemoryStore indique si les événements sont gardés en mémoire.
func (c *Config) UsesMemoryStore() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

// validate applique toutes les règles sur la configuration chargée.
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if c.GuildID == "" {
		return fmt.Errorf("config: GUILD_ID est requis et ne peut pas être vide")
	}
	if !isDigits(c.GuildID) {
		return fmt.Errorf("config: GUILD_ID doit être un ID de serveur Discord (chiffres uniquement)")
	}

	if c.DatabaseURL == "" {
		// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
		c.DatabaseURL = defaultDatabaseURL
	}
	if !c.UsesMemoryStore() {
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
		}
	}

	if c.RedisURL != "" {
		parsed, err := url.Parse(c.RedisURL)
		if err != nil || (parsed.Scheme != "redis" && parsed.Scheme != "rediss") {
			return fmt.Errorf("config: REDIS_URL invalide (%q): redis:// ou rediss:// attendu", c.RedisURL)
		}
	}

	if c.TickInterval <= 0 {
		return fmt.Errorf("config: TICK_INTERVAL doit être positif (%s)", c.TickInterval)
	}

	if c.MigrationsPath == "" {
		c.MigrationsPath = defaultMigrationsPath
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.CommandPrefix == "" {
		c.CommandPrefix = defaultCommandPrefix
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
