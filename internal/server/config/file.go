package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/projdash/internal/flagx"
	"github.com/dmitrijs2005/projdash/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. It is an intermediate DTO:
// only the fields present (non-zero) in the file are copied into Config.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	StorageBackend              string         `json:"storage_backend" yaml:"storage_backend"`
	DataDir                     string         `json:"data_dir" yaml:"data_dir"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SQLitePath                  string         `json:"sqlite_path" yaml:"sqlite_path"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	AvatarMaxBytes              int64          `json:"avatar_max_bytes" yaml:"avatar_max_bytes"`
	AvatarMaxDimension          int            `json:"avatar_max_dimension" yaml:"avatar_max_dimension"`
	AllowedCategories           []string       `json:"allowed_categories" yaml:"allowed_categories"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	LogFile                     string         `json:"log_file" yaml:"log_file"`
}

// parseFile overlays values from the file named by -c/-config, if any.
// The format is chosen by extension: .yaml/.yml for YAML, anything else JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.applyTo(config)
	return nil
}

func (c *FileConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DataDir, c.DataDir)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AvatarMaxBytes > 0 {
		config.AvatarMaxBytes = c.AvatarMaxBytes
	}
	if c.AvatarMaxDimension > 0 {
		config.AvatarMaxDimension = c.AvatarMaxDimension
	}
	if c.AllowedCategories != nil {
		config.AllowedCategories = append([]string(nil), c.AllowedCategories...)
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
