package layout

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"binfetch/internal/logger"
)

// Platform identifies a supported operating system.
type Platform string

// Arch identifies a supported CPU architecture.
type Arch string

const (
	PlatformWindows Platform = "windows"
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"

	ArchX64   Arch = "x64"
	ArchArm64 Arch = "arm64"
)

// Target is one (platform, architecture) cell of the support matrix.
type Target struct {
	Platform Platform
	Arch     Arch
}

// String renders the target the way progress lines show it, e.g. "linux-arm64".
func (t Target) String() string {
	return string(t.Platform) + "-" + string(t.Arch)
}

// Windows reports whether the target needs .exe suffixes and must not
// have execute bits applied.
func (t Target) Windows() bool {
	return t.Platform == PlatformWindows
}

// Targets returns the fixed support matrix in iteration order. The matrix
// never changes after startup; every (platform, arch) pair outside it is
// implicitly skipped by every tool resolver.
func Targets() []Target {
	return []Target{
		{PlatformWindows, ArchX64},
		{PlatformDarwin, ArchX64},
		{PlatformDarwin, ArchArm64},
		{PlatformLinux, ArchX64},
		{PlatformLinux, ArchArm64},
	}
}

// Key is the composite manifest key for one (platform, arch, tool) cell.
type Key struct {
	Platform Platform
	Arch     Arch
	Tool     string
}

// String renders the key in its serialized form, e.g. "windows_x64_ffmpeg".
func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s", k.Platform, k.Arch, k.Tool)
}

// Layout computes and creates the destination directory tree under a base
// directory for every (platform, arch, tool) combination.
type Layout struct {
	Base  string   // Base directory all binaries are installed under
	Tools []string // Tool subdirectory names, created for every target
}

// New returns a Layout rooted at base for the given tool names.
func New(base string, tools []string) *Layout {
	return &Layout{Base: base, Tools: tools}
}

// Ensure creates every directory of the matrix up front, before any network
// activity, so permission problems surface as one fatal error instead of
// confusing mid-run failures. It is idempotent: existing directories are
// left untouched.
func (l *Layout) Ensure() error {
	for _, target := range Targets() {
		for _, tool := range l.Tools {
			dir := l.Dir(target, tool)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create layout directory %s: %w", dir, err)
			}
			logger.Debug("[DEBUG] Ensured directory %s\n", dir)
		}
	}
	return nil
}

// Dir returns the absolute on-disk directory for a tool on a target.
func (l *Layout) Dir(target Target, tool string) string {
	return filepath.Join(l.Base, string(target.Platform), string(target.Arch), tool)
}

// RelPath returns the manifest-facing relative path for an installed
// executable. Manifest paths always use POSIX separators regardless of the
// host OS.
func (l *Layout) RelPath(target Target, tool, executable string) string {
	return path.Join(string(target.Platform), string(target.Arch), tool, executable)
}
