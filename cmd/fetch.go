package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"binfetch/internal/config"
	"binfetch/internal/installer"
	"binfetch/internal/layout"
	"binfetch/internal/logger"
	"binfetch/internal/manifest"
)

// configPath holds the path to the optional YAML configuration file,
// passed via the `--config` or `-c` flag. A missing file means the
// compiled-in pinned defaults are used.
var configPath string

// baseDir and manifestPath override the config file when set.
var (
	baseDir      string
	manifestPath string
)

// fetchCmd downloads all three tools across the full platform matrix and
// writes the manifest.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all tools (ffmpeg, bento4, megatools) for every supported platform",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		runTools(cfg, installer.Specs(cfg)...)
	},
}

// fetchFFmpegCmd fetches only the ffmpeg/ffprobe pair.
var fetchFFmpegCmd = &cobra.Command{
	Use:   "ffmpeg",
	Short: "Fetch only the ffmpeg transcoder pair",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		runTools(cfg, installer.FFmpegSpec(cfg.FFmpeg))
	},
}

// fetchBento4Cmd fetches only the Bento4 tool set.
var fetchBento4Cmd = &cobra.Command{
	Use:   "bento4",
	Short: "Fetch only the Bento4 ISO-BMFF tools",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		runTools(cfg, installer.Bento4Spec(cfg.Bento4))
	},
}

// fetchMegatoolsCmd fetches only megatools.
var fetchMegatoolsCmd = &cobra.Command{
	Use:   "megatools",
	Short: "Fetch only the megatools cloud-storage CLI",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		runTools(cfg, installer.MegatoolsSpec(cfg.Megatools))
	},
}

// loadConfig loads the YAML config (or the defaults) and applies any
// command-line overrides. Config errors are fatal.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
	if baseDir != "" {
		cfg.BaseDir = baseDir
	}
	if manifestPath != "" {
		cfg.ManifestPath = manifestPath
	}
	return cfg
}

// runTools prepares the directory layout, runs every given tool spec across
// the matrix, and writes the manifest once at the end. Layout and manifest
// failures are fatal; per-cell fetch and extraction failures are not.
func runTools(cfg config.Config, specs ...installer.ToolSpec) {
	logger.Info("Binary Downloader\n")
	logger.Info("Base: %s\n", cfg.BaseDir)

	lay := layout.New(cfg.BaseDir, installer.ToolNames())
	if err := lay.Ensure(); err != nil {
		// Nothing has been downloaded yet; abort before any network work.
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}

	man := manifest.New()
	runner := &installer.Runner{
		Downloader: installer.NewDownloader(time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.UserAgent),
		Layout:     lay,
		Manifest:   man,
	}

	ctx := context.Background()
	for _, spec := range specs {
		runner.RunTool(ctx, spec)
	}

	if err := man.Save(cfg.ManifestPath); err != nil {
		// Installed binaries stay on disk even when the manifest write
		// fails; the operator only loses the index.
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
	logger.Info("\nPaths: %s\n", cfg.ManifestPath)
	logger.Info("Done!\n")
}

// init sets up CLI flags and wires the fetch subcommands.
func init() {
	fetchCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "binfetch.yaml", "Path to configuration file")
	fetchCmd.PersistentFlags().StringVar(&baseDir, "base", "", "Base directory for installed binaries (overrides config)")
	fetchCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "Manifest output path (overrides config)")

	fetchCmd.AddCommand(fetchFFmpegCmd)
	fetchCmd.AddCommand(fetchBento4Cmd)
	fetchCmd.AddCommand(fetchMegatoolsCmd)
	rootCmd.AddCommand(fetchCmd)
}
