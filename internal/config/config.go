package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the CLI settings read from an INI file's DEFAULT section.
type Config struct {
	LogLevel      slog.Level
	DBPath        string
	ICPHHVersions []string
}

func Default() *Config {
	return &Config{
		LogLevel: slog.LevelInfo,
	}
}

// Load reads path. An empty path gives the defaults; a path that doesn't exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	section := file.Section(ini.DefaultSection)

	level, err := parseLevel(section.Key("LOG_LEVEL").MustString("INFO"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.DBPath = section.Key("DB_PATH").MustString("")
	for _, v := range section.Key("ICPHH_VERSIONS").Strings(",") {
		if v != "" {
			cfg.ICPHHVersions = append(cfg.ICPHHVersions, v)
		}
	}
	return cfg, nil
}

func parseLevel(text string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(text)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", text)
	}
	return level, nil
}
