// Package config loads server configuration from defaults, an optional YAML
// file, a .env file, environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures the server settings.
type Config struct {
	Addr            string
	DBPath          string
	TokenSecret     string
	TokenTTL        time.Duration
	RoomTTL         time.Duration
	CleanupInterval time.Duration
	StaticPath      string
	LogLevel        string
	LogFormat       string
}

// setting describes one configuration key across every source.
type setting struct {
	key   string // YAML key
	env   string
	flag  string
	def   string
	usage string
}

var settings = []setting{
	{"addr", "SPLITROOM_ADDR", "addr", ":8080", "listen address"},
	{"db_path", "SPLITROOM_DB_PATH", "db-path", "./data/splitroom.db", "SQLite database file"},
	{"token_secret", "SPLITROOM_TOKEN_SECRET", "token-secret", "", "HMAC secret for participant tokens (required)"},
	{"token_ttl", "SPLITROOM_TOKEN_TTL", "token-ttl", "720h", "participant token lifetime"},
	{"room_ttl", "SPLITROOM_ROOM_TTL", "room-ttl", "1440h", "room lifetime after creation"},
	{"cleanup_interval", "SPLITROOM_CLEANUP_INTERVAL", "cleanup-interval", "1h", "how often expired rooms are deleted"},
	{"static_path", "SPLITROOM_STATIC_PATH", "static-path", "", "directory of static frontend files (empty disables)"},
	{"log_level", "LOG_LEVEL", "log-level", "info", "debug, info, warn or error"},
	{"log_format", "LOG_FORMAT", "log-format", "text", "text or json"},
}

// Loader reads configuration. The zero value is not usable; see Load.
type Loader struct {
	// LookupEnv reads the process environment.
	LookupEnv func(key string) (string, bool)
	// DotEnvPath is read if it exists. Its values never override the environment.
	DotEnvPath string
}

// Load reads configuration for the current process.
func Load(args []string) (Config, error) {
	l := &Loader{LookupEnv: os.LookupEnv, DotEnvPath: ".env"}
	return l.Load(args)
}

// Load merges every source and validates the result. Missing and invalid keys
// are reported together.
func (l *Loader) Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("splitroom", pflag.ContinueOnError)
	configPath := flags.String("config", "", "YAML configuration file")
	for _, s := range settings {
		flags.String(s.flag, "", s.usage+" (default \""+s.def+"\")")
	}
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.key] = s.def
	}

	dotenv, err := l.readDotEnv()
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	path := *configPath
	if path == "" {
		path, _ = lookup("SPLITROOM_CONFIG")
	}
	if path != "" {
		if err := readYAML(path, values); err != nil {
			return Config{}, err
		}
	}

	for _, s := range settings {
		if v, ok := lookup(s.env); ok && strings.TrimSpace(v) != "" {
			values[s.key] = strings.TrimSpace(v)
		}
		if flags.Changed(s.flag) {
			v, _ := flags.GetString(s.flag)
			values[s.key] = v
		}
	}

	return parse(values)
}

func (l *Loader) readDotEnv() (map[string]string, error) {
	if l.DotEnvPath == "" {
		return nil, nil
	}
	values, err := godotenv.Read(l.DotEnvPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.DotEnvPath, err)
	}
	return values, nil
}

func readYAML(path string, values map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file map[string]any
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for key, raw := range file {
		if _, known := values[key]; !known {
			return fmt.Errorf("config file %s: unknown key %q", path, key)
		}
		if raw == nil {
			values[key] = ""
			continue
		}
		values[key] = fmt.Sprint(raw)
	}
	return nil
}

func parse(values map[string]string) (Config, error) {
	cfg := Config{
		Addr:       values["addr"],
		DBPath:     values["db_path"],
		StaticPath: values["static_path"],
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if cfg.Addr == "" {
		missing = append(missing, "addr")
	}
	if cfg.DBPath == "" {
		missing = append(missing, "db_path")
	}
	if secret := values["token_secret"]; secret == "" {
		missing = append(missing, "token_secret")
	} else {
		cfg.TokenSecret = secret
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"token_ttl", &cfg.TokenTTL},
		{"room_ttl", &cfg.RoomTTL},
		{"cleanup_interval", &cfg.CleanupInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(values[d.key])
		if err != nil || v <= 0 {
			invalid = append(invalid, d.key)
			continue
		}
		*d.dst = v
	}

	switch level := strings.ToLower(values["log_level"]); level {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = level
	default:
		invalid = append(invalid, "log_level")
	}
	switch format := strings.ToLower(values["log_format"]); format {
	case "text", "json":
		cfg.LogFormat = format
	default:
		invalid = append(invalid, "log_format")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required settings: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid settings: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}
