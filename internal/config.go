package internal

import (
	"chat-archiver/retry"
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

type Config struct {
	DocumentID            string        `env:"DOCUMENT_ID,required=true" validate:"required"`
	ExportPath            string        `env:"EXPORT_PATH,required=true" validate:"required"`
	SenderFilter          string        `env:"SENDER_FILTER"`
	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE" validate:"required_unless=DryRun true"`
	CheckpointBackend     string        `env:"CHECKPOINT_BACKEND,default=file" validate:"oneof=file badger"`
	CheckpointDir         string        `env:"CHECKPOINT_DIR,default=.checkpoints"`
	BadgerFilepath        string        `env:"BADGER_FILEPATH,default=.badger"`
	ArchiveTitle          string        `env:"ARCHIVE_TITLE,default=Chat Archive"`
	ExportDateLayout      string        `env:"EXPORT_DATE_LAYOUT,default=02/01/2006"`
	ExportTimezone        string        `env:"EXPORT_TIMEZONE,default=Local"`
	RetryMaxAttempts      int           `env:"RETRY_MAX_ATTEMPTS,default=5" validate:"min=1"`
	RetryInitialInterval  time.Duration `env:"RETRY_INITIAL_INTERVAL,default=200ms" validate:"gt=0"`
	RetryMaxInterval      time.Duration `env:"RETRY_MAX_INTERVAL,default=5s" validate:"gtefield=RetryInitialInterval"`
	RemoteTimeout         time.Duration `env:"REMOTE_TIMEOUT,default=2m" validate:"gt=0"`
	DryRun                bool          `env:"DRY_RUN,default=false"`
	LogLevel              string        `env:"LOG_LEVEL,default=INFO"`
}

// LoadConfig reads a .env file when present; variables already set in the
// environment win over it.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Filter is nil when every participant is archived.
func (c Config) Filter() *string {
	filter := strings.TrimSpace(c.SenderFilter)
	if filter == "" {
		return nil
	}
	return &filter
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ExportTimezone)
}

func (c Config) RetryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = uint(c.RetryMaxAttempts)
	policy.InitialInterval = c.RetryInitialInterval
	policy.MaxInterval = c.RetryMaxInterval
	return policy
}

func (c Config) StoreOptions() StoreOptions {
	return StoreOptions{
		Backend:        c.CheckpointBackend,
		CheckpointDir:  c.CheckpointDir,
		BadgerFilepath: c.BadgerFilepath,
	}
}
