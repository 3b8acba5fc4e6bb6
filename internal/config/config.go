package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	schemaFile = "fish_schema.json"
	speciesDir = "species"
	dataDir    = "data"
)

// Configuration is the resolved settings for one validation run.
type Configuration struct {
	Service       ServiceConfig
	Paths         PathsConfig
	Observability ObservabilityConfig
	Kafka         KafkaConfig
}

type ServiceConfig struct {
	Principal string
}

// PathsConfig locates the schema and the species data. Paths are derived from
// the repository root, never from user arguments.
type PathsConfig struct {
	RepoRoot   string
	SchemaPath string
	SpeciesDir string
}

type ObservabilityConfig struct {
	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
	Timeout   time.Duration
}

// Load builds the configuration from the program location and the environment.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-species-validator")

	root := os.Getenv("SPECIES_REPO_ROOT")
	if root == "" {
		root = RepoRootFromExecutable()
	}

	return &Configuration{
		Service: ServiceConfig{
			Principal: principal,
		},
		Paths: ResolvePaths(root),
		Observability: ObservabilityConfig{
			LogLevel:        envOrDefault("LOG_LEVEL", "warn"),
			LogFormat:       envOrDefault("LOG_FORMAT", "console"),
			MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		},
		Kafka: KafkaConfig{
			Enabled:   envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:   envOrDefaultList("KAFKA_BROKERS", nil),
			Topic:     envOrDefault("KAFKA_TOPIC", "species.validation"),
			Principal: envOrDefault("KAFKA_PRINCIPAL", principal),
			Timeout:   envOrDefaultDuration("KAFKA_TIMEOUT", 10*time.Second),
		},
	}
}

// ResolvePaths derives the schema and data locations from a repository root.
func ResolvePaths(root string) PathsConfig {
	return PathsConfig{
		RepoRoot:   root,
		SchemaPath: filepath.Join(root, dataDir, schemaFile),
		SpeciesDir: filepath.Join(root, dataDir, speciesDir),
	}
}

// RepoRootFromExecutable returns the directory two levels above the one
// holding the running binary. It falls back to the working directory when the
// executable cannot be located.
func RepoRootFromExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return RepoRootFrom(exe)
}

// RepoRootFrom returns the repository root for a program file at path.
func RepoRootFrom(path string) string {
	return filepath.Dir(filepath.Dir(filepath.Dir(path)))
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// envOrDefaultList splits a comma-separated value, dropping empty entries.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
