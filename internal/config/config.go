/**
 * @description
 * This file handles the configuration management for the aggregator-service.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	MethodAPIKey        string `mapstructure:"METHOD_API_KEY"`
	MethodAPIBaseURL    string `mapstructure:"METHOD_API_BASE_URL"`
	QuilttAPISecret     string `mapstructure:"QUILTT_API_SECRET"`
	QuilttAPIBaseURL    string `mapstructure:"QUILTT_API_BASE_URL"`
	QuilttWebhookSecret string `mapstructure:"QUILTT_WEBHOOK_SECRET"`
	AuthJWTSecret       string `mapstructure:"AUTH_JWT_SECRET"`
	ReconcileSchedule   string `mapstructure:"RECONCILE_SCHEDULE"`
	ServerPort          string `mapstructure:"SERVER_PORT"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8084")
	viper.SetDefault("METHOD_API_BASE_URL", "https://production.methodfi.com")
	viper.SetDefault("QUILTT_API_BASE_URL", "https://api.quiltt.io/v1")
	viper.SetDefault("RECONCILE_SCHEDULE", "0 2 * * *")

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("METHOD_API_KEY")
	_ = viper.BindEnv("METHOD_API_BASE_URL")
	_ = viper.BindEnv("QUILTT_API_SECRET")
	_ = viper.BindEnv("QUILTT_API_BASE_URL")
	_ = viper.BindEnv("QUILTT_WEBHOOK_SECRET")
	_ = viper.BindEnv("AUTH_JWT_SECRET")
	_ = viper.BindEnv("RECONCILE_SCHEDULE")
	_ = viper.BindEnv("SERVER_PORT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
