package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Storage      Storage
	LogLevel     string
	GeminiApiKey string
	GeminiModel  string
}

type Server struct {
	Port    string
	GinMode string
}

// Database selects the backing store. Driver "sqlite" uses the single file at Path,
// "postgres" uses the Host/Port/User/Password/Name fields.
type Database struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Storage struct {
	ImageDir     string
	FetchTimeout time.Duration
	MaxUploadMB  int64
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "colorblind_test.db")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("IMAGE_DIR", "images")
	viper.SetDefault("FETCH_TIMEOUT", "15s")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Path = viper.GetString("DATABASE_PATH")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Storage.ImageDir = viper.GetString("IMAGE_DIR")
	config.Storage.FetchTimeout = viper.GetDuration("FETCH_TIMEOUT")
	config.Storage.MaxUploadMB = viper.GetInt64("MAX_UPLOAD_MB")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.GeminiModel = viper.GetString("GEMINI_MODEL")

	log.Info().
		Str("port", config.Server.Port).
		Str("db_driver", config.Database.Driver).
		Str("db_path", config.Database.Path).
		Str("image_dir", config.Storage.ImageDir).
		Dur("fetch_timeout", config.Storage.FetchTimeout).
		Bool("gemini_enabled", config.GeminiApiKey != "").
		Msg("Config loaded")
	return &config, nil
}
