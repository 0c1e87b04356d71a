package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env  string `mapstructure:"app_env"`
		Port string `mapstructure:"port"`
	} `mapstructure:",squash"`

	Database struct {
		Driver   string `mapstructure:"db_driver"` // postgres, mysql, sqlite
		URL      string `mapstructure:"database_url"`
		Host     string `mapstructure:"db_host"`
		User     string `mapstructure:"db_user"`
		Password string `mapstructure:"db_password"`
		Name     string `mapstructure:"db_name"`
		Port     string `mapstructure:"db_port"`
		TimeZone string `mapstructure:"db_timezone"`
	} `mapstructure:",squash"`

	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TTLHours      int    `mapstructure:"jwt_ttl_hours"`
		AdminUsername string `mapstructure:"admin_username"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:",squash"`

	Metrics struct {
		Enabled bool `mapstructure:"metrics_enabled"`
	} `mapstructure:",squash"`
}

var keys = map[string]interface{}{
	"app_env":         "dev",
	"port":            "3000",
	"db_driver":       "postgres",
	"database_url":    "",
	"db_host":         "localhost",
	"db_user":         "postgres",
	"db_password":     "",
	"db_name":         "inventory",
	"db_port":         "5432",
	"db_timezone":     "UTC",
	"jwt_secret":      "your-super-secret-key-change-in-production",
	"jwt_ttl_hours":   24,
	"admin_username":  "admin",
	"admin_password":  "admin123",
	"metrics_enabled": true,
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	for k, def := range keys {
		v.SetDefault(k, def)
		// AutomaticEnv alone does not make Unmarshal see unset keys.
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "prod" || c.App.Env == "production"
}
