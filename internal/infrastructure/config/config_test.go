package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "NutriMatch", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 384, cfg.Pipeline.EmbeddingDimension)
	assert.Equal(t, 5, cfg.Pipeline.DefaultResults)
	assert.Equal(t, 50, cfg.Pipeline.MaxResults)
	assert.True(t, cfg.Pipeline.DynamicByDefault)
	assert.Equal(t, int64(42), cfg.Generation.Seed)
	assert.True(t, cfg.Dataset.UseEmbedded)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: TestApp
  environment: production
server:
  port: 9090
pipeline:
  embedding_dimension: 128
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TestApp", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 128, cfg.Pipeline.EmbeddingDimension)
	assert.True(t, cfg.IsProduction())
	// Unset keys keep their defaults.
	assert.Equal(t, 256, cfg.Pipeline.QueryCacheSize)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("NUTRIMATCH_SERVER_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Name: "x"},
			Server: ServerConfig{Port: 8080},
			Pipeline: PipelineConfig{
				EmbeddingDimension: 384,
				DefaultResults:     5,
				MaxResults:         50,
			},
		}
	}

	assert.NoError(t, valid().Validate())

	c := valid()
	c.App.Name = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Server.Port = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Server.Port = 70000
	assert.Error(t, c.Validate())

	c = valid()
	c.Pipeline.EmbeddingDimension = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Pipeline.MaxResults = 3
	assert.Error(t, c.Validate())
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8080}}

	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
