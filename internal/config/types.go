package config

// ToolSource pins where one tool's artifacts are downloaded from.
//   - BaseURL: directory-style URL prefix the per-target artifact names are
//     appended to.
//   - Version: the single pinned version string for the tool. There is no
//     version negotiation; changing a version means editing the config.
type ToolSource struct {
	BaseURL string `yaml:"base_url"`
	Version string `yaml:"version"`
}

// Config is the full runtime configuration. Every field has a compiled-in
// default so the tool runs with no config file at all; a YAML file only
// overrides the pieces it names.
type Config struct {
	// BaseDir is the directory the per-platform binary tree is created under.
	BaseDir string `yaml:"base_dir"`

	// ManifestPath is where the final JSON manifest is written.
	ManifestPath string `yaml:"manifest_path"`

	// TimeoutSeconds bounds each individual download request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// UserAgent is sent on every download request. Some of the upstream
	// hosts reject requests without a browser-looking agent string.
	UserAgent string `yaml:"user_agent"`

	FFmpeg    ToolSource `yaml:"ffmpeg"`
	Bento4    ToolSource `yaml:"bento4"`
	Megatools ToolSource `yaml:"megatools"`
}
