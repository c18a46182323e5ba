package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for the bot and its tools.
// Values are populated from .marcos.yaml, MARCOS_* env vars, and CLI flags.
type Config struct {
	DBPath              string  `mapstructure:"db_path"`
	GRPCAddr            string  `mapstructure:"grpc_addr"`
	ChatID              int64   `mapstructure:"chat_id"`
	ChatType            string  `mapstructure:"chat_type"`
	BotUsername         string  `mapstructure:"bot_username"`
	MutationProbability float64 `mapstructure:"mutation_probability"`
	MaxWalkSteps        int     `mapstructure:"max_walk_steps"`
	HaikuAttempts       int     `mapstructure:"haiku_attempts"`
	SubstitutePeople    bool    `mapstructure:"substitute_people"`
	ListenToAyyLmao     bool    `mapstructure:"listen_to_ayy_lmao"`
	LocalesPath         string  `mapstructure:"locales_path"`
	Verbose             bool    `mapstructure:"verbose"`
}

// Load reads configuration from the global viper instance, applying
// built-in defaults for any values not set by config file, environment,
// or flags.
func Load() Config {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load over an explicit viper instance.
func LoadFrom(v *viper.Viper) Config {
	v.SetDefault("db_path", "marcos.db")
	v.SetDefault("grpc_addr", "localhost:50151")
	v.SetDefault("chat_id", 1)
	v.SetDefault("chat_type", "private")
	v.SetDefault("bot_username", "MarcosBot")
	v.SetDefault("mutation_probability", 0.2)
	v.SetDefault("max_walk_steps", 500)
	v.SetDefault("haiku_attempts", 20)
	v.SetDefault("substitute_people", true)
	v.SetDefault("listen_to_ayy_lmao", true)
	v.SetDefault("locales_path", "")
	v.SetDefault("verbose", false)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
