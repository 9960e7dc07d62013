package config

import (
	"flag"
	"os"
	"time"

	"github.com/messagely/core/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-w int      bcrypt work factor
//	-o int      max open connections
//	-i int      max idle connections
//	-t int      connection max lifetime, minutes
//	-l string   log level
//
// os.Args is first filtered to the flags handled here via flagx.FilterArgs,
// avoiding collisions with flags registered by other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-w", "-o", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt work factor")
	fs.IntVar(&config.MaxOpenConns, "o", config.MaxOpenConns, "max open connections")
	fs.IntVar(&config.MaxIdleConns, "i", config.MaxIdleConns, "max idle connections")

	connMaxLifetime := fs.Int("t", int(config.ConnMaxLifetime.Minutes()), "connection max lifetime (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConnMaxLifetime = time.Duration(*connMaxLifetime) * time.Minute
}
