package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Languages  LanguagesConfig  `mapstructure:"languages"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Outputs    OutputsConfig    `mapstructure:"outputs"`
	Decks      DecksConfig      `mapstructure:"decks"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
}

type LanguagesConfig struct {
	Native string `mapstructure:"native" validate:"required,language"`
	Target string `mapstructure:"target" validate:"required,language,nefield=Native"`
}

type VocabularyConfig struct {
	DatabaseFile string `mapstructure:"database_file" validate:"required"`
}

type EnrichmentConfig struct {
	CacheFile     string        `mapstructure:"cache_file" validate:"required"`
	BatchSize     int           `mapstructure:"batch_size" validate:"gte=1"`
	BatchInterval time.Duration `mapstructure:"batch_interval"`
	MaxRetries    uint          `mapstructure:"max_retries"`
}

type OutputsConfig struct {
	TSVDirectory  string `mapstructure:"tsv_directory" validate:"required"`
	APKGDirectory string `mapstructure:"apkg_directory" validate:"required"`
}

type DecksConfig struct {
	ForeignNative bool `mapstructure:"foreign_native"`
	NativeForeign bool `mapstructure:"native_foreign"`
	NativeNative  bool `mapstructure:"native_native"`
	CreateAPKG    bool `mapstructure:"create_apkg"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kindanki")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("languages.native", "en")
	v.SetDefault("languages.target", "de")
	v.SetDefault("vocabulary.database_file", "vocab.db")
	v.SetDefault("enrichment.cache_file", filepath.Join("anki_cards", "translated_cache.json"))
	v.SetDefault("enrichment.batch_size", 20)
	// 4.5s keeps the call rate under the free tier's 15 requests per minute.
	v.SetDefault("enrichment.batch_interval", 4500*time.Millisecond)
	v.SetDefault("enrichment.max_retries", 3)
	v.SetDefault("outputs.tsv_directory", filepath.Join("anki_cards", "tsv_files"))
	v.SetDefault("outputs.apkg_directory", filepath.Join("anki_cards", "apkg_files"))
	v.SetDefault("decks.foreign_native", true)
	v.SetDefault("decks.native_foreign", true)
	v.SetDefault("decks.native_native", true)
	v.SetDefault("decks.create_apkg", true)
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// Bind Gemini config to environment variables only (not from config file)
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("gemini.model", "GEMINI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_MODEL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
