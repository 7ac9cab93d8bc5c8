package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/projdash/internal/flagx"
)

var allowedFlags = []string{
	"-a", "-k", "-f", "-d", "-q", "-s", "-t",
	"-u", "-p", "-b", "-g", "-e", "-l", "-o",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-k string   storage backend: file, postgres, sqlite
//	-f string   data directory of the file backend
//	-d string   PostgreSQL DSN
//	-q string   SQLite database path
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name (empty keeps pictures inline)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//	-o string   rotating log file
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// components (such as -c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, allowedFlags)

	fs := flag.NewFlagSet("projdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DataDir, "f", config.DataDir, "file backend data directory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "q", config.SQLitePath, "sqlite database path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "o", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Minutes would truncate sub-minute values from files, so only an
	// explicit -t replaces the current duration.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		}
	})

	return nil
}
