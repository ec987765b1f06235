package installer

import (
	"fmt"

	"binfetch/internal/config"
	"binfetch/internal/layout"
)

// Tool directory names, also used as the tool segment of manifest keys.
const (
	ToolFFmpeg    = "ffmpeg"
	ToolBento4    = "bento4"
	ToolMegatools = "megatools"
)

// Strategy selects how executables are pulled out of a downloaded artifact.
type Strategy int

const (
	// StrategyStream decompresses a single-entry gzip stream straight to
	// the final executable.
	StrategyStream Strategy = iota
	// StrategyScan looks through zip entries for paths ending with each
	// expected executable name and installs the matches independently.
	StrategyScan
	// StrategyWalk extracts the whole archive and walks the result for one
	// exactly-named executable.
	StrategyWalk
)

// Artifact is one downloadable artifact for a (tool, target) cell: where to
// get it, what container it arrives in, how to mine it, and which final
// executable names to expect.
type Artifact struct {
	URL         string
	ArchiveName string // download filename inside the tool directory
	Format      Format
	Strategy    Strategy
	Executables []string
}

// ToolSpec is the static per-tool configuration: a display name, the number
// of executables a fully successful target yields, and a resolver mapping a
// target to its artifacts. A resolver returning nothing means the tool
// publishes no binaries for that target and the cell is skipped.
type ToolSpec struct {
	Name     string
	Title    string // header shown at the start of the tool's run
	Expected int
	Resolve  func(target layout.Target) []Artifact
}

// ffmpegPlatforms maps targets to the platform fragment in the
// ffmpeg-static release filenames. Windows arm64 has no published build.
var ffmpegPlatforms = map[layout.Target]string{
	{Platform: layout.PlatformWindows, Arch: layout.ArchX64}:  "win32-x64",
	{Platform: layout.PlatformDarwin, Arch: layout.ArchX64}:   "darwin-x64",
	{Platform: layout.PlatformDarwin, Arch: layout.ArchArm64}: "darwin-arm64",
	{Platform: layout.PlatformLinux, Arch: layout.ArchX64}:    "linux-x64",
	{Platform: layout.PlatformLinux, Arch: layout.ArchArm64}:  "linux-arm64",
}

// FFmpegSpec resolves the transcoder pair. Each executable ships as its own
// single-entry gzip, so a target resolves to two artifacts.
func FFmpegSpec(src config.ToolSource) ToolSpec {
	return ToolSpec{
		Name:     ToolFFmpeg,
		Title:    "FFmpeg",
		Expected: 2,
		Resolve: func(target layout.Target) []Artifact {
			platform, ok := ffmpegPlatforms[target]
			if !ok {
				return nil
			}
			var artifacts []Artifact
			for _, executable := range []string{"ffmpeg", "ffprobe"} {
				filename := fmt.Sprintf("%s-%s", executable, platform)
				final := executable
				if target.Windows() {
					final += ".exe"
				}
				artifacts = append(artifacts, Artifact{
					URL:         fmt.Sprintf("%s/%s.gz", src.BaseURL, filename),
					ArchiveName: filename + ".gz",
					Format:      FormatGzip,
					Strategy:    StrategyStream,
					Executables: []string{final},
				})
			}
			return artifacts
		},
	}
}

// bento4Platforms maps targets to the platform triple in the Bento4 SDK
// zip names. The darwin build is a universal binary and the linux build is
// x86_64-only, so both architectures share one archive there.
var bento4Platforms = map[layout.Target]string{
	{Platform: layout.PlatformWindows, Arch: layout.ArchX64}:  "x86_64-microsoft-win32",
	{Platform: layout.PlatformDarwin, Arch: layout.ArchX64}:   "universal-apple-macosx",
	{Platform: layout.PlatformDarwin, Arch: layout.ArchArm64}: "universal-apple-macosx",
	{Platform: layout.PlatformLinux, Arch: layout.ArchX64}:    "x86_64-unknown-linux",
	{Platform: layout.PlatformLinux, Arch: layout.ArchArm64}:  "x86_64-unknown-linux",
}

// Bento4Spec resolves the ISO-BMFF tool set. One SDK zip per target holds
// all four executables under a nested SDK directory, mined by suffix scan.
func Bento4Spec(src config.ToolSource) ToolSpec {
	return ToolSpec{
		Name:     ToolBento4,
		Title:    "Bento4",
		Expected: 4,
		Resolve: func(target layout.Target) []Artifact {
			platform, ok := bento4Platforms[target]
			if !ok {
				return nil
			}
			names := make([]string, 0, 4)
			for _, executable := range []string{"mp4decrypt", "mp4encrypt", "mp4info", "mp4dump"} {
				if target.Windows() {
					executable += ".exe"
				}
				names = append(names, executable)
			}
			return []Artifact{{
				URL:         fmt.Sprintf("%s/Bento4-SDK-%s.%s.zip", src.BaseURL, src.Version, platform),
				ArchiveName: "bento4.zip",
				Format:      FormatZip,
				Strategy:    StrategyScan,
				Executables: names,
			}}
		},
	}
}

// megatoolsBuild pairs the build name fragment with its transport format.
type megatoolsBuild struct {
	platform string
	format   Format
}

// megatoolsBuilds maps targets to published megatools builds. There is no
// native darwin or linux-arm build matching every cell, so darwin reuses
// the linux builds the way the upstream matrix does.
var megatoolsBuilds = map[layout.Target]megatoolsBuild{
	{Platform: layout.PlatformWindows, Arch: layout.ArchX64}:  {"win64", FormatZip},
	{Platform: layout.PlatformDarwin, Arch: layout.ArchX64}:   {"linux-x86_64", FormatTarGz},
	{Platform: layout.PlatformDarwin, Arch: layout.ArchArm64}: {"linux-aarch64", FormatTarGz},
	{Platform: layout.PlatformLinux, Arch: layout.ArchX64}:    {"linux-x86_64", FormatTarGz},
	{Platform: layout.PlatformLinux, Arch: layout.ArchArm64}:  {"linux-aarch64", FormatTarGz},
}

// MegatoolsSpec resolves the cloud-storage CLI: one archive per target
// (zip on windows, tar.gz elsewhere) holding a single executable found by
// extracting everything and walking for it.
func MegatoolsSpec(src config.ToolSource) ToolSpec {
	return ToolSpec{
		Name:     ToolMegatools,
		Title:    "Megatools",
		Expected: 1,
		Resolve: func(target layout.Target) []Artifact {
			build, ok := megatoolsBuilds[target]
			if !ok {
				return nil
			}
			executable := "megatools"
			if target.Windows() {
				executable += ".exe"
			}
			return []Artifact{{
				URL:         fmt.Sprintf("%s/megatools-%s-%s%s", src.BaseURL, src.Version, build.platform, build.format),
				ArchiveName: "megatools" + build.format.String(),
				Format:      build.format,
				Strategy:    StrategyWalk,
				Executables: []string{executable},
			}}
		},
	}
}

// Specs returns the three tool specs in run order, bound to the configured
// sources.
func Specs(cfg config.Config) []ToolSpec {
	return []ToolSpec{
		FFmpegSpec(cfg.FFmpeg),
		Bento4Spec(cfg.Bento4),
		MegatoolsSpec(cfg.Megatools),
	}
}

// ToolNames returns the tool directory names in run order.
func ToolNames() []string {
	return []string{ToolFFmpeg, ToolBento4, ToolMegatools}
}
