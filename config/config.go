// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")

	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers     = []string{"postgres", "sqlite"}
	validCodeStores    = []string{"memory", "redis"}
	validStorageTypes  = []string{"s3", "none"}
	errJWTSecretNotSet = errors.New("jwt.secret is not set")
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	bindEnvs()
	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	err := Validate()
	if errors.Is(err, errJWTSecretNotSet) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

func bindEnvs() {
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.expire_minutes", "jwt_expire_minutes")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.sender", "mail_sender")
	v.BindEnv("mail.timeout", "mail_timeout")

	v.BindEnv("verification.store", "verification_store")
	v.BindEnv("verification.window", "verification_window")
	v.BindEnv("verification.max_attempts", "verification_max_attempts")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.max_avatar_size", "storage_max_avatar_size")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.endpoint", "aws_endpoint")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("cleanup.schedule", "cleanup_schedule")
	v.BindEnv("cleanup.unverified_after", "cleanup_unverified_after")
}

// SetDefaults registers the default value of every key. Exported so tests
// can get a usable configuration without a config.toml file.
func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("jwt.expire_minutes", 60*24)

	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("verification.store", "memory")
	v.SetDefault("verification.window", 300*time.Second)
	v.SetDefault("verification.max_attempts", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.type", "none")
	v.SetDefault("storage.max_avatar_size", 2)

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("cleanup.schedule", "@daily")
	v.SetDefault("cleanup.unverified_after", 7*24*time.Hour)
}

// Validate checks the values currently loaded into viper.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return errJWTSecretNotSet
	}

	if v.GetInt("jwt.expire_minutes") <= 0 {
		return errors.New("jwt.expire_minutes must be bigger than 0")
	}

	if v.GetString("mail.host") == "" {
		return errors.New("mail host can't be empty")
	}

	if v.GetString("mail.sender") == "" {
		return errors.New("mail sender can't be empty")
	}

	if v.GetDuration("mail.timeout") <= 0 {
		return errors.New("mail.timeout must be bigger than 0")
	}

	if !slices.Contains(validCodeStores, v.GetString("verification.store")) {
		return errors.New("invalid verification store provided")
	}

	if v.GetDuration("verification.window") <= 0 {
		return errors.New("verification.window must be bigger than 0")
	}

	if v.GetInt("verification.max_attempts") <= 0 {
		return errors.New("verification.max_attempts must be bigger than 0")
	}

	if v.GetString("verification.store") == "redis" && v.GetString("redis.addr") == "" {
		return errors.New("redis address can't be empty")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("aws.region") == "" {
			return errors.New("aws region can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("aws.access_key") == "" {
			return errors.New("access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	case "none":
		fmt.Println("[WARNING]: Object storage is disabled. Avatar uploads will be rejected")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetInt("storage.max_avatar_size") <= 0 {
		return errors.New("max avatar size must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if _, err := cron.ParseStandard(v.GetString("cleanup.schedule")); err != nil {
		return fmt.Errorf("invalid cleanup schedule, %w", err)
	}

	if v.GetDuration("cleanup.unverified_after") <= 0 {
		return errors.New("cleanup.unverified_after must be bigger than 0")
	}

	return nil
}
