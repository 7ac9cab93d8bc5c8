package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "PROJDASH_"

// dotEnvFile is loaded before the environment is read. Variables already set
// in the process environment take precedence over the file.
var dotEnvFile = ".env"

// parseEnv overlays PROJDASH_* environment variables.
func parseEnv(config *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	strs := map[string]*string{
		"HTTP_ADDRESS":     &config.EndpointAddrHTTP,
		"STORAGE_BACKEND":  &config.StorageBackend,
		"DATA_DIR":         &config.DataDir,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SQLITE_PATH":      &config.SQLitePath,
		"SECRET_KEY":       &config.SecretKey,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"LOG_LEVEL":        &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	// an empty value switches these off
	for name, dst := range map[string]*string{
		"S3_BUCKET": &config.S3Bucket,
		"LOG_FILE":  &config.LogFile,
	} {
		if v, ok := lookupPresent(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("ACCESS_TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sACCESS_TOKEN_VALIDITY: %w", EnvPrefix, err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := lookup("AVATAR_MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sAVATAR_MAX_BYTES: %w", EnvPrefix, err)
		}
		config.AvatarMaxBytes = n
	}
	if v, ok := lookup("AVATAR_MAX_DIMENSION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sAVATAR_MAX_DIMENSION: %w", EnvPrefix, err)
		}
		config.AvatarMaxDimension = n
	}
	if v, ok := lookupPresent("ALLOWED_CATEGORIES"); ok {
		config.AllowedCategories = splitList(v)
	}

	return nil
}

// lookup returns the trimmed variable; unset and empty are the same.
func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// lookupPresent is like lookup but also reports variables set to "".
func lookupPresent(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	return strings.TrimSpace(v), ok
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
