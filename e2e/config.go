package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_DOCUMENT_ID is a scratch document the suite appends to. Left empty, the suite is skipped.
	DocumentID      string `envconfig:"E2E_DOCUMENT_ID"`
	CredentialsFile string `envconfig:"E2E_GOOGLE_CREDENTIALS_FILE"`
	// E2E_DEBUG_JSON dumps every batch update request as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool   `envconfig:"E2E_COLOURS" default:"true"`
	Sender  string `envconfig:"E2E_SENDER" default:"Alice"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Enabled() bool {
	return c.DocumentID != "" && c.CredentialsFile != ""
}
