package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/pipeline"
)

// Config holds the settings read from the TOML config file. Every
// field has a working default, so the file is optional.
type Config struct {
	// Layout defaults, overridable per command via flags.
	Seed           uint64  `toml:"seed"`
	UnitEdgeLength float64 `toml:"unit_edge_length"`
	Quality        string  `toml:"quality"`

	// CacheDir overrides the XDG cache location. RedisURL switches the
	// serve command to a Redis cache.
	CacheDir string `toml:"cache_dir"`
	RedisURL string `toml:"redis_url"`

	// Server settings. With an empty MongoURI the server keeps
	// drawings in memory.
	Listen        string `toml:"listen"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Seed:           pipeline.DefaultSeed,
		UnitEdgeLength: pipeline.DefaultUnitEdgeLength,
		Quality:        pipeline.QualityStandard,
		Listen:         ":8080",
		MongoDatabase:  appName,
	}
}

// LoadConfig reads the config file at path, or the default location
// when path is empty. A missing default file yields the defaults; a
// missing explicit file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
			}
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidOptions,
			"unknown config key %q in %s", undecoded[0].String(), path)
	}

	if cfg.Quality != "" {
		if err := pipeline.ValidateQuality(cfg.Quality); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// defaultConfigPath returns ~/.config/orrery/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
