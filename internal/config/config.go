package config

import (
	"github.com/spf13/viper"
)

const DefaultDatabasePath = "./catalog.db"

type (
	Config struct {
		HTTP
		Global
		Database
		OpenLibrary
		MetadataSync
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	OpenLibrary struct {
		BaseURL          string
		TimeoutInSeconds int
	}
	MetadataSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("openlibrary_base_url", "")
	v.SetDefault("openlibrary_timeout_in_seconds", 10)
	v.SetDefault("metadata_sync_enabled", false)
	v.SetDefault("metadata_sync_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL:          v.GetString("OPENLIBRARY_BASE_URL"),
			TimeoutInSeconds: v.GetInt("OPENLIBRARY_TIMEOUT_IN_SECONDS"),
		},
		MetadataSync: MetadataSync{
			Enabled:  v.GetBool("METADATA_SYNC_ENABLED"),
			Schedule: v.GetString("METADATA_SYNC_SCHEDULE"),
		},
	}
}
