package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"species-schema-validator/internal/config"
	"species-schema-validator/internal/runner"
)

const fishSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "weight_kg"],
  "properties": {
    "name": {"type": "string"},
    "weight_kg": {"type": "number"}
  }
}`

func testConfig(t *testing.T, species map[string]string) *config.Configuration {
	t.Helper()
	root := t.TempDir()
	paths := config.ResolvePaths(root)
	require.NoError(t, os.MkdirAll(paths.SpeciesDir, 0o755))
	require.NoError(t, os.WriteFile(paths.SchemaPath, []byte(fishSchema), 0o644))
	for name, content := range species {
		require.NoError(t, os.WriteFile(filepath.Join(paths.SpeciesDir, name), []byte(content), 0o644))
	}

	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	return &config.Configuration{
		Service: config.ServiceConfig{Principal: "svc-test"},
		Paths:   paths,
		Observability: config.ObservabilityConfig{
			LogLevel:        "info",
			LogFormat:       "json",
			MetricsTextfile: filepath.Join(root, "species.prom"),
		},
		Kafka: config.KafkaConfig{Topic: "species.validation"},
	}
}

func TestRun_Success(t *testing.T) {
	cfg := testConfig(t, map[string]string{"bass.json": `{"name": "Bass", "weight_kg": 1.2}`})
	var logs, out bytes.Buffer

	a := New(cfg, &logs)
	defer a.Shutdown()
	code := a.Run(context.Background(), &out)

	assert.Equal(t, runner.ExitOK, code)
	assert.Equal(t, "All species files valid.\n", out.String())
	assert.Contains(t, logs.String(), "Species validation starting")
	assert.NotContains(t, logs.String(), "All species files valid.")

	prom, err := os.ReadFile(cfg.Observability.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "species_validator_run_success 1")
}

func TestRun_InvalidData(t *testing.T) {
	cfg := testConfig(t, map[string]string{"trout.json": `{"name": "Trout"}`})
	var logs, out bytes.Buffer

	a := New(cfg, &logs)
	defer a.Shutdown()
	code := a.Run(context.Background(), &out)

	assert.Equal(t, runner.ExitInvalid, code)
	assert.Contains(t, out.String(), "Errors in "+filepath.Join(cfg.Paths.SpeciesDir, "trout.json")+":")
}

func TestRun_OperationalFailure(t *testing.T) {
	cfg := testConfig(t, map[string]string{"pike.json": `{"name": `})
	var logs, out bytes.Buffer

	a := New(cfg, &logs)
	defer a.Shutdown()
	code := a.Run(context.Background(), &out)

	assert.Equal(t, runner.ExitOperational, code)
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Species validation aborted")
	assert.Contains(t, logs.String(), `"stack"`)
}

func TestNew_LoggingDefaults(t *testing.T) {
	cfg := testConfig(t, map[string]string{"bass.json": `{"name": "Bass", "weight_kg": 1.2}`})
	cfg.Observability.LogLevel = ""
	cfg.Observability.LogFormat = ""
	var logs, out bytes.Buffer

	a := New(cfg, &logs)
	defer a.Shutdown()
	code := a.Run(context.Background(), &out)

	assert.Equal(t, runner.ExitOK, code)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.NotContains(t, logs.String(), "Species validation starting")
}
