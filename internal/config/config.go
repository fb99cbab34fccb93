package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	UniqueScopeList   = "list"
	UniqueScopeGlobal = "global"

	defaultMaxUploadBytes = 10 << 20
)

var serverPrefixPattern = regexp.MustCompile(`^[a-z]{2}[0-9]+$`)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MailchimpAPIKey              string
	MailchimpServer              string
	MailchimpTimeout             time.Duration
	StrictServerPrefixValidation bool

	MongoURI      string
	MongoDatabase string

	AllowedOrigins []string

	UploadDir      string
	MaxUploadBytes int64

	SubscriberUniqueScope string

	AMQPURL     string
	EventsQueue string
}

// IsProduction hides stack traces and switches the logger to the JSON encoder.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LoadConfig reads .env (if present) and the process environment once at startup.
func LoadConfig() (*Config, error) {
	godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any env-style lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, defaultVal string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return defaultVal
	}

	cfg := &Config{
		Port:                  get("PORT", "3000"),
		Environment:           get("APP_ENV", "development"),
		LogLevel:              get("LOG_LEVEL", "info"),
		MailchimpAPIKey:       get("MAILCHIMP_API_KEY", ""),
		MailchimpServer:       strings.ToLower(get("MAILCHIMP_SERVER_PREFIX", "")),
		MongoURI:              get("MONGODB_URI", ""),
		MongoDatabase:         get("MONGODB_DATABASE", ""),
		UploadDir:             get("UPLOAD_DIR", "uploads"),
		SubscriberUniqueScope: strings.ToLower(get("SUBSCRIBER_UNIQUE_SCOPE", UniqueScopeList)),
		AMQPURL:               get("AMQP_URL", ""),
		EventsQueue:           get("EVENTS_QUEUE", "audience_events"),
	}

	var err error
	if cfg.StrictServerPrefixValidation, err = strconv.ParseBool(get("STRICT_SERVER_PREFIX_VALIDATION", "true")); err != nil {
		return nil, fmt.Errorf("STRICT_SERVER_PREFIX_VALIDATION: %w", err)
	}
	if cfg.MailchimpTimeout, err = time.ParseDuration(get("MAILCHIMP_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("MAILCHIMP_TIMEOUT: %w", err)
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(get("MAX_UPLOAD_BYTES", strconv.Itoa(defaultMaxUploadBytes)), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}

	origins := get("ALLOWED_ORIGINS", get("FRONTEND_URL", "http://localhost:3000"))
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "mailchimp"
		if cs, err := connstring.Parse(cfg.MongoURI); err == nil && cs.Database != "" {
			cfg.MongoDatabase = cs.Database
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MailchimpAPIKey == "" {
		return fmt.Errorf("MAILCHIMP_API_KEY not configured")
	}
	if c.MailchimpServer == "" {
		return fmt.Errorf("MAILCHIMP_SERVER_PREFIX not configured")
	}
	if c.StrictServerPrefixValidation && !serverPrefixPattern.MatchString(c.MailchimpServer) {
		return fmt.Errorf("MAILCHIMP_SERVER_PREFIX %q must look like us13", c.MailchimpServer)
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI not configured")
	}
	if c.SubscriberUniqueScope != UniqueScopeList && c.SubscriberUniqueScope != UniqueScopeGlobal {
		return fmt.Errorf("SUBSCRIBER_UNIQUE_SCOPE must be %q or %q", UniqueScopeList, UniqueScopeGlobal)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
