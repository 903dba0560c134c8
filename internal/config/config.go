package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the YAML configuration.
var ErrLoadConfig = errors.New("config load failed")

// Config is the tool's own optional YAML configuration. The deployment's
// .env file stays the only required input; everything here has a compiled
// default.
type Config struct {
	ProjectRoot string `mapstructure:"project_root" yaml:"project_root"`
	EnvFile     string `mapstructure:"env_file"     yaml:"env_file"`
	ComposeFile string `mapstructure:"compose_file" yaml:"compose_file"`
	Service     string `mapstructure:"service"      yaml:"service"`

	Backup    BackupConfig    `mapstructure:"backup"    yaml:"backup"`
	Retention RetentionConfig `mapstructure:"retention" yaml:"retention"`
	Health    HealthConfig    `mapstructure:"health"    yaml:"health"`
	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
}

// BackupConfig contains dump output options.
type BackupConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Prefix    string `mapstructure:"prefix"    yaml:"prefix"`
	Compress  bool   `mapstructure:"compress"  yaml:"compress"`
}

// RetentionConfig specifies how many backups to keep after rotation.
type RetentionConfig struct {
	KeepLast int `mapstructure:"keep_last" yaml:"keep_last"`
}

// HealthConfig bounds the HTTP liveness probe.
type HealthConfig struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	DefaultPort  string        `mapstructure:"default_port"  yaml:"default_port"`
}

// LogConfig names the append-only run log.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration used when no YAML file is present.
func Default() Config {
	return Config{
		ProjectRoot: ".",
		EnvFile:     ".env",
		ComposeFile: "docker-compose.yml",
		Service:     "db",
		Backup: BackupConfig{
			Directory: "backups",
			Prefix:    "wikijs_db",
		},
		Retention: RetentionConfig{KeepLast: 10},
		Health: HealthConfig{
			ProbeTimeout: 5 * time.Second,
			DefaultPort:  "80",
		},
		Log: LogConfig{File: filepath.Join("logs", "wikiops.log")},
	}
}

// Load reads the YAML file at path over the defaults. When required is
// false and the file does not exist, the defaults are returned unchanged;
// when required is true a missing file is an error.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%w: stat %s: %v", ErrLoadConfig, path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrLoadConfig, path, err)
	}
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: unmarshal %s: %v", ErrLoadConfig, path, err)
	}
	return cfg, nil
}

// EnvPath resolves the env file against the project root.
func (c Config) EnvPath() string {
	return filepath.Join(c.ProjectRoot, c.EnvFile)
}

// ComposePath resolves the compose definition against the project root.
func (c Config) ComposePath() string {
	return filepath.Join(c.ProjectRoot, c.ComposeFile)
}

// BackupDir resolves the backup directory against the project root.
func (c Config) BackupDir() string {
	return filepath.Join(c.ProjectRoot, c.Backup.Directory)
}

// DataDirs lists the persistent data directories the deployment needs.
func (c Config) DataDirs() []string {
	return []string{
		filepath.Join(c.ProjectRoot, "data", "db"),
		filepath.Join(c.ProjectRoot, "data", "wiki"),
	}
}

// LogPath resolves the run log against the project root.
func (c Config) LogPath() string {
	return filepath.Join(c.ProjectRoot, c.Log.File)
}
