package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env                string   `envconfig:"ENV" default:"local"`
	HTTPHost           string   `envconfig:"HTTP_HOST" default:""`
	HTTPPort           string   `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"debug"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	// TraceOutput is "-" for stdout or a file path. Empty disables tracing.
	TraceOutput string `envconfig:"TRACE_OUTPUT"`
}

type AuthEnv struct {
	JWTSecret              string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL               time.Duration `envconfig:"TOKEN_TTL" default:"8h"`
	BootstrapAdminEmail    string        `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string        `envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`
	DefaultPassword        string        `envconfig:"DEFAULT_PASSWORD" default:"password123"`
	// EmailDomain, when set, is the only domain employee emails may use.
	EmailDomain string `envconfig:"EMAIL_DOMAIN"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskboard/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// Used when Type == "postgres"
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	// Used when Type == "redis"
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"taskboard"`
}

type Env struct {
	BaseEnv
	AuthEnv
	StorageEnv
}

const namespace = "TASKBOARD"

// LoadEnv reads the given dotenv files (".env" when none are named) into the
// process environment without overriding variables that are already set,
// then decodes the TASKBOARD_ namespace. Missing dotenv files are ignored.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	if e.JWTSecret == "" {
		return errors.New("TASKBOARD_JWT_SECRET must not be empty")
	}
	switch e.StorageEnv.Type {
	case "local":
	case "s3":
		if e.S3Bucket == "" {
			return errors.New("TASKBOARD_S3_BUCKET is required for s3 storage")
		}
	case "postgres":
		if e.PostgresDSN == "" {
			return errors.New("TASKBOARD_POSTGRES_DSN is required for postgres storage")
		}
	case "redis":
		if e.RedisURL == "" {
			return errors.New("TASKBOARD_REDIS_URL is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", e.StorageEnv.Type)
	}
	if e.TokenTTL <= 0 {
		return errors.New("TASKBOARD_TOKEN_TTL must be positive")
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func (e *BaseEnv) Addr() string {
	return e.HTTPHost + ":" + e.HTTPPort
}
