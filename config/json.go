package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/messagely/core/internal/flagx"
	"github.com/messagely/core/internal/timex"
)

// JSONConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which parses both string
// values such as "5m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JSONConfig struct {
	DatabaseDSN     string         `json:"database_dsn"`
	BcryptCost      int            `json:"bcrypt_cost"`
	MaxOpenConns    int            `json:"max_open_conns"`
	MaxIdleConns    int            `json:"max_idle_conns"`
	ConnMaxLifetime timex.Duration `json:"conn_max_lifetime"`
	LogLevel        string         `json:"log_level"`
}

// parseJSON loads configuration values from a JSON file into config.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a half-applied config is worse than no start at all.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JSONConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.BcryptCost = c.BcryptCost
	config.MaxOpenConns = c.MaxOpenConns
	config.MaxIdleConns = c.MaxIdleConns
	config.ConnMaxLifetime = time.Duration(c.ConnMaxLifetime.Duration)
	config.LogLevel = c.LogLevel
}
