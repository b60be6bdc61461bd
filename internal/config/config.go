package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	ListenAddr  string `mapstructure:"LISTEN_ADDR"`

	// Oracle endpoint and the shared secret used both for outbound requests
	// and to verify inbound callbacks.
	OracleURL    string `mapstructure:"ORACLE_URL"`
	OracleSecret string `mapstructure:"ORACLE_SECRET"`

	// Protocol parameters.
	MinBet      int64         `mapstructure:"MIN_BET"`
	FeeBps      int64         `mapstructure:"FEE_BPS"`
	VoidAfter   time.Duration `mapstructure:"VOID_AFTER"`
	CallbackGas uint64        `mapstructure:"CALLBACK_GAS"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("LISTEN_ADDR", ":8080")
	viper.SetDefault("MIN_BET", 1000)        // 1 unit in milliunits
	viper.SetDefault("FEE_BPS", 250)         // 2.5%
	viper.SetDefault("VOID_AFTER", "50m")    // ~1000 blocks at 3s
	viper.SetDefault("CALLBACK_GAS", 200000) // fixed callback budget quoted to the oracle

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
