package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factreply/internal/logging"
)

// isolate runs the test from an empty directory with no bot variables set
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("HOME", dir)
	for name := range legacyEnv {
		t.Setenv(name, "")
	}
	return dir
}

func logLevel(level string) logging.Config {
	return logging.Config{Level: level}
}

func validConfig() *Config {
	return &Config{
		Bot: BotConfig{Interval: 20 * time.Minute, Lookback: 30 * time.Minute, ResponseLimit: 35},
		Twitter: TwitterConfig{
			APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts",
		},
		LLM:       LLMConfig{Provider: "openai", APIKey: "sk"},
		Store:     StoreConfig{Backend: StoreAirtable},
		Airtable:  AirtableConfig{APIKey: "key", BaseID: "app1", Table: "replies"},
		Scheduler: SchedulerConfig{Backend: SchedulerLoop},
		Log:       logLevel("info"),
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, cfg.Bot.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Bot.Lookback)
	assert.Equal(t, 35, cfg.Bot.ResponseLimit)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 3, cfg.Search.TopResults)
	assert.Equal(t, StoreAirtable, cfg.Store.Backend)
	assert.Equal(t, "Grid view", cfg.Airtable.View)
	assert.Equal(t, SchedulerLoop, cfg.Scheduler.Backend)
	assert.Equal(t, "data/factreply.db", cfg.SQLite.Path)
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bot]
interval = "10m"
lookback = "15m"
response_limit = 5

[llm]
model = "gpt-4o"
api_key = "from-file"
`), 0o644))

	t.Setenv("OPENAI_API_KEY", "from-legacy-env")
	t.Setenv("FACTREPLY_BOT__RESPONSE_LIMIT", "7")
	t.Setenv("FACTREPLY_STORE__BACKEND", "memory")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Bot.Interval)
	assert.Equal(t, 15*time.Minute, cfg.Bot.Lookback)
	assert.Equal(t, 7, cfg.Bot.ResponseLimit)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "from-legacy-env", cfg.LLM.APIKey)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
}

func TestLoadConfig_LegacyNames(t *testing.T) {
	isolate(t)
	t.Setenv("TWITTER_API_KEY", "ck")
	t.Setenv("AIRTABLE_BASE_KEY", "appXYZ")
	t.Setenv("AIRTABLE_TABLE_NAME", "Replies")
	t.Setenv("DATABASE_URL", "postgres://localhost/bot")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ck", cfg.Twitter.APIKey)
	assert.Equal(t, "appXYZ", cfg.Airtable.BaseID)
	assert.Equal(t, "Replies", cfg.Airtable.Table)
	assert.Equal(t, "postgres://localhost/bot", cfg.Database.URL)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AIRTABLE_API_KEY=from-dotenv\n"), 0o644))
	// godotenv never overrides a variable that is already set, even to ""
	require.NoError(t, os.Unsetenv("AIRTABLE_API_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("AIRTABLE_API_KEY") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Airtable.APIKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	isolate(t)
	_, err := LoadConfig("does-not-exist.toml")
	assert.Error(t, err)
}

func TestInitConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "factreply.toml")

	require.NoError(t, InitConfig(path))
	assert.Error(t, InitConfig(path), "refuses to overwrite")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"lookback shorter than interval", func(c *Config) { c.Bot.Lookback = 10 * time.Minute }, "bot.lookback"},
		{"zero limit", func(c *Config) { c.Bot.ResponseLimit = 0 }, "response_limit"},
		{"missing twitter secrets", func(c *Config) { c.Twitter.AccessTokenSecret = "" }, "twitter"},
		{"bearer only is fine for dry runs", func(c *Config) {
			c.Twitter = TwitterConfig{BearerToken: "b"}
			c.Bot.DryRun = true
		}, ""},
		{"missing llm key", func(c *Config) { c.LLM.APIKey = "" }, "llm api_key"},
		{"ollama needs no key", func(c *Config) { c.LLM = LLMConfig{Provider: "ollama"} }, ""},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "eliza" }, "unsupported llm provider"},
		{"airtable incomplete", func(c *Config) { c.Airtable.Table = "" }, "airtable"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = StoreSQLite }, "sqlite path"},
		{"sqlite with path", func(c *Config) {
			c.Store.Backend = StoreSQLite
			c.SQLite.Path = "bot.db"
		}, ""},
		{"redis without url", func(c *Config) { c.Store.Backend = StoreRedis }, "redis url"},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }, "database url"},
		{"river without url", func(c *Config) { c.Scheduler.Backend = SchedulerRiver }, "river"},
		{"bad log level", func(c *Config) { c.Log = logLevel("chatty") }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.Twitter.APIKey = "abcdefghijkl"
	cfg.Database.URL = "postgres://u:p@host/db"

	out := Redacted(cfg)
	assert.Equal(t, "abcd****", out.Twitter.APIKey)
	assert.Equal(t, "****", out.Twitter.APISecret)
	assert.Equal(t, "post****", out.Database.URL)
	assert.Equal(t, "", out.Redis.URL)
	assert.Equal(t, "abcdefghijkl", cfg.Twitter.APIKey, "original untouched")
	assert.Equal(t, cfg.Bot, out.Bot)
}
