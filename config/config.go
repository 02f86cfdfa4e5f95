// server/config/config.go
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs mirroring config.yaml ---

type AppConfig struct {
	Title     string `mapstructure:"title"`
	Version   string `mapstructure:"version"`
	Debug     bool   `mapstructure:"debug"`
	StaticDir string `mapstructure:"staticDir"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

// Enabled reports whether photo uploads can be stored.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type SeedConfig struct {
	DemoData bool `mapstructure:"demoData"`
}

// --- Root config ---

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Log    LogConfig    `mapstructure:"log"`
	S3     S3Config     `mapstructure:"s3"`
	Seed   SeedConfig   `mapstructure:"seed"`
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LoadConfig reads config.yaml from path and overrides it with environment
// variables. A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("app.title", "Fruit Store")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.staticDir", "static")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "fruit_store")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("seed.demoData", false)

	// The env names are the ones the store has always used.
	v.BindEnv("app.title", "APP_TITLE")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.debug", "DEBUG")
	v.BindEnv("app.staticDir", "STATIC_DIR")
	v.BindEnv("server.host", "APP_HOST")
	v.BindEnv("server.port", "APP_PORT")
	v.BindEnv("server.corsOrigins", "CORS_ORIGINS")
	v.BindEnv("mongo.uri", "MONGODB_URL")
	v.BindEnv("mongo.dbName", "DATABASE_NAME")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	v.BindEnv("seed.demoData", "SEED_DEMO_DATA")

	// Without config.yaml only defaults and env are used.
	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	// CORS_ORIGINS arrives as a comma separated string.
	config.Server.CORSOrigins = splitList(config.Server.CORSOrigins)

	return
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
