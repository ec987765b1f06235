package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pinned upstream locations and versions. These are the defaults a bare run
// uses; a config file can point individual tools elsewhere (a mirror, a
// newer release) without touching the code.
const (
	DefaultFFmpegURL    = "https://github.com/eugeneware/ffmpeg-static/releases/download/b6.1.1"
	DefaultBento4URL    = "https://www.bok.net/Bento4/binaries"
	DefaultMegatoolsURL = "https://megatools.megous.com/builds/builds"

	DefaultBento4Version    = "1-6-0-641"
	DefaultMegatoolsVersion = "1.11.3.20250401"

	DefaultTimeoutSeconds = 60
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Default returns the built-in configuration: pinned tool versions, binaries
// under ./binaries, manifest at ./binary_paths.json.
func Default() Config {
	return Config{
		BaseDir:        "binaries",
		ManifestPath:   "binary_paths.json",
		TimeoutSeconds: DefaultTimeoutSeconds,
		UserAgent:      DefaultUserAgent,
		FFmpeg:         ToolSource{BaseURL: DefaultFFmpegURL},
		Bento4:         ToolSource{BaseURL: DefaultBento4URL, Version: DefaultBento4Version},
		Megatools:      ToolSource{BaseURL: DefaultMegatoolsURL, Version: DefaultMegatoolsVersion},
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file is not an error: the tool is expected to run zero-config, so Load
// simply returns Default(). A present-but-malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// Overrides live under a top-level "binfetch:" key.
	wrapper := struct {
		Binfetch Config `yaml:"binfetch"`
	}{Binfetch: cfg}
	if err := yaml.Unmarshal(raw, &wrapper); err != nil {
		return cfg, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	cfg = wrapper.Binfetch

	// Zero or negative timeouts would disable the request bound entirely.
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return cfg, nil
}
