package config

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gitdot/pkg/errors"
)

// FileName is the per-repository config file.
const FileName = ".gitdot.toml"

// Find returns the config file to load: explicit when set, else FileName in
// repoDir, else $XDG_CONFIG_HOME/gitdot/config.toml. It returns "" when none
// exists. An explicit path that does not exist is an error.
func Find(explicit, repoDir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", explicit)
		}
		return explicit, nil
	}
	candidates := []string{filepath.Join(repoDir, FileName)}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "gitdot", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads a TOML config file over the defaults, expanding $VAR
// references first, and validates the result. Keys gitdot does not know are
// returned as warnings.
func Load(path string) (*Config, []string, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config file %s", path)
	}

	md, err := toml.Decode(os.ExpandEnv(string(data)), cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, "unknown config key "+key.String())
	}
	return cfg, warnings, nil
}
