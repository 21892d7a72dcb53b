package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Languages: LanguagesConfig{
			Native: "en",
			Target: "de",
		},
		Vocabulary: VocabularyConfig{
			DatabaseFile: "vocab.db",
		},
		Enrichment: EnrichmentConfig{
			CacheFile:     filepath.Join("anki_cards", "translated_cache.json"),
			BatchSize:     20,
			BatchInterval: 4500 * time.Millisecond,
			MaxRetries:    3,
		},
		Outputs: OutputsConfig{
			TSVDirectory:  filepath.Join("anki_cards", "tsv_files"),
			APKGDirectory: filepath.Join("anki_cards", "apkg_files"),
		},
		Decks: DecksConfig{
			ForeignNative: true,
			NativeForeign: true,
			NativeNative:  true,
			CreateAPKG:    true,
		},
		Gemini: GeminiConfig{
			APIKey: "",
			Model:  "gemini-2.0-flash",
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		env               map[string]string
		wantErr           bool
		want              *Config
		wantErrorContains []string
	}{
		{
			name:          "missing config file uses defaults",
			configContent: "",
			want:          defaultConfig(),
		},
		{
			name: "custom values override defaults",
			configContent: `languages:
  native: en
  target: fr
vocabulary:
  database_file: /media/kindle/vocab.db
enrichment:
  cache_file: cache/words.json
  batch_size: 5
  batch_interval: 10s
  max_retries: 1
outputs:
  tsv_directory: out/tsv
  apkg_directory: out/apkg
decks:
  native_native: false
  create_apkg: false
`,
			want: &Config{
				Languages: LanguagesConfig{
					Native: "en",
					Target: "fr",
				},
				Vocabulary: VocabularyConfig{
					DatabaseFile: "/media/kindle/vocab.db",
				},
				Enrichment: EnrichmentConfig{
					CacheFile:     "cache/words.json",
					BatchSize:     5,
					BatchInterval: 10 * time.Second,
					MaxRetries:    1,
				},
				Outputs: OutputsConfig{
					TSVDirectory:  "out/tsv",
					APKGDirectory: "out/apkg",
				},
				Decks: DecksConfig{
					ForeignNative: true,
					NativeForeign: true,
					NativeNative:  false,
					CreateAPKG:    false,
				},
				Gemini: GeminiConfig{
					APIKey: "",
					Model:  "gemini-2.0-flash",
				},
			},
		},
		{
			name: "gemini settings come from the environment",
			env: map[string]string{
				"GEMINI_API_KEY": "test-api-key",
				"GEMINI_MODEL":   "gemini-2.5-pro",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Gemini.APIKey = "test-api-key"
				cfg.Gemini.Model = "gemini-2.5-pro"
				return cfg
			}(),
		},
		{
			name: "invalid YAML format",
			configContent: `languages:
  native: en
  invalid yaml here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "unsupported language code",
			configContent: `languages:
  target: xx
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"languages.target",
			},
		},
		{
			name: "same native and target language",
			configContent: `languages:
  native: de
  target: de
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
			},
		},
		{
			name: "batch size below one",
			configContent: `enrichment:
  batch_size: 0
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			tempDir := t.TempDir()
			configPath := ""
			if tt.configContent != "" {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)

			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
