package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "lead-scorer"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	AI      AIConfig      `mapstructure:"ai"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed-origins"`
	MaxUploadBytes int64         `mapstructure:"max-upload-bytes"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
}

type ScoringConfig struct {
	BatchSize      int           `mapstructure:"batch-size"`
	Concurrency    int           `mapstructure:"concurrency"`
	RateLimit      float64       `mapstructure:"rate-limit"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

type AIConfig struct {
	Provider     string          `mapstructure:"provider"`
	MaxLogLength int             `mapstructure:"max-log-length"`
	Gemini       GeminiConfig    `mapstructure:"gemini"`
	Anthropic    AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type AnthropicConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	MaxTokens  int64  `mapstructure:"max-tokens"`
	MaxRetries int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "lead-scorer qualifies sales leads against a product offer with rules and an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	viper.SetEnvPrefix("LEAD_SCORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"server.port":               "PORT",
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is lead-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("provider", "", "llm provider used for intent classification: gemini or anthropic")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
}

func setDefaults() {
	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.allowed-origins", []string{"*"})
	viper.SetDefault("server.max-upload-bytes", 10<<20)
	viper.SetDefault("server.read-timeout", 30*time.Second)
	viper.SetDefault("server.write-timeout", 5*time.Minute)

	viper.SetDefault("scoring.batch-size", 5)
	viper.SetDefault("scoring.concurrency", 1)
	viper.SetDefault("scoring.rate-limit", 0)
	viper.SetDefault("scoring.request-timeout", 2*time.Minute)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.max-log-length", 200)

	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.base-url", "")
	viper.SetDefault("ai.gemini.max-retries", 3)

	viper.SetDefault("ai.anthropic.api-key", "")
	viper.SetDefault("ai.anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("ai.anthropic.base-url", "")
	viper.SetDefault("ai.anthropic.max-tokens", 2048)
	viper.SetDefault("ai.anthropic.max-retries", 3)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was requested explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
