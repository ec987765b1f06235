package installer

import (
	"archive/tar"   // For reading .tar archives
	"archive/zip"   // For reading .zip archives
	"compress/gzip" // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"binfetch/internal/logger"
)

// Format tags the transport format a tool's artifact is published in.
// Adding a format means adding one case to extractArchive (or, for
// stream formats like gzip, one install strategy); nothing else changes.
type Format int

const (
	// FormatGzip is a bare gzip stream holding exactly one executable.
	FormatGzip Format = iota
	// FormatZip is a zip container.
	FormatZip
	// FormatTarGz is a gzip-compressed tarball.
	FormatTarGz
	// FormatTarXz is an xz-compressed tarball.
	FormatTarXz
	// Format7z is a 7-Zip container.
	Format7z
)

// String returns the conventional filename extension for the format.
func (f Format) String() string {
	switch f {
	case FormatGzip:
		return ".gz"
	case FormatZip:
		return ".zip"
	case FormatTarGz:
		return ".tar.gz"
	case FormatTarXz:
		return ".tar.xz"
	case Format7z:
		return ".7z"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// executableMode is applied to installed binaries on non-windows targets.
const executableMode = 0o755

// installGzipped decompresses a single-entry gzip file straight to
// finalPath. The .gz source is removed whether or not decompression
// succeeds, so a failed run never leaves half-consumed archives behind.
// The executable bit is applied only when executable is true (windows
// targets never get mode changes).
func installGzipped(gzPath, finalPath string, executable bool) error {
	defer removeQuiet(gzPath)

	in, err := os.Open(gzPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", gzPath, err)
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("gzip reader for %s: %w", gzPath, err)
	}
	defer gr.Close()

	out, err := os.Create(finalPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", finalPath, err)
	}
	if _, err := io.Copy(out, gr); err != nil {
		out.Close()
		removeQuiet(finalPath)
		return fmt.Errorf("decompress %s: %w", gzPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", finalPath, err)
	}

	if executable {
		if err := os.Chmod(finalPath, executableMode); err != nil {
			return fmt.Errorf("chmod %s: %w", finalPath, err)
		}
	}
	return nil
}

// installMatching scans a zip archive for entries whose paths end with each
// of the expected executable names and installs every match into destDir
// under its bare name. Names are matched independently: a missing entry is
// a miss for that name only, never an error, so partial installs are normal
// (e.g. 3 of 4). The returned slice holds the names actually installed.
func installMatching(zipPath, destDir string, names []string, executable bool) ([]string, error) {
	defer removeQuiet(zipPath)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", zipPath, err)
	}
	defer r.Close()

	scratch, err := os.MkdirTemp(destDir, ".extract-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Error("[ERROR] Failed to remove scratch dir %s: %v\n", scratch, err)
		}
	}()

	var installed []string
	for _, name := range names {
		entry := findEntry(r.File, name)
		if entry == nil {
			logger.Debug("[DEBUG] No zip entry matches %s\n", name)
			continue
		}

		staged := filepath.Join(scratch, name)
		if err := extractZipEntry(entry, staged); err != nil {
			return installed, fmt.Errorf("extract %s: %w", entry.Name, err)
		}

		final := filepath.Join(destDir, name)
		if err := os.Rename(staged, final); err != nil {
			return installed, fmt.Errorf("move %s: %w", name, err)
		}
		if executable {
			if err := os.Chmod(final, executableMode); err != nil {
				return installed, fmt.Errorf("chmod %s: %w", final, err)
			}
		}
		installed = append(installed, name)
	}
	return installed, nil
}

// installNamed extracts an entire archive to a scratch directory, walks the
// extracted tree for a file literally named executable, and moves the first
// match into destDir. It handles every container format (zip, tar.gz,
// tar.xz, 7z); the archive and scratch directory are removed on every exit
// path. Returns false without error when the archive simply has no file of
// that name.
func installNamed(archivePath string, format Format, destDir, executable string, setMode bool) (bool, error) {
	defer removeQuiet(archivePath)

	scratch, err := os.MkdirTemp(destDir, ".extract-")
	if err != nil {
		return false, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Error("[ERROR] Failed to remove scratch dir %s: %v\n", scratch, err)
		}
	}()

	if err := extractArchive(format, archivePath, scratch); err != nil {
		return false, err
	}

	found, err := findNamed(scratch, executable)
	if err != nil {
		return false, err
	}
	if found == "" {
		return false, nil
	}

	final := filepath.Join(destDir, executable)
	if err := os.Rename(found, final); err != nil {
		return false, fmt.Errorf("move %s: %w", executable, err)
	}
	if setMode {
		if err := os.Chmod(final, executableMode); err != nil {
			return false, fmt.Errorf("chmod %s: %w", final, err)
		}
	}
	return true, nil
}

// extractArchive routes a container archive to the handler for its format.
func extractArchive(format Format, src, dest string) error {
	switch format {
	case FormatZip:
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(src, dest)
	case FormatTarGz, FormatTarXz:
		logger.Debug("[DEBUG] compression type is %s\n", format)
		return extractTar(format, src, dest)
	case Format7z:
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(src, dest)
	default:
		return fmt.Errorf("unsupported archive format %s", format)
	}
}

// extractZip extracts every entry of a .zip archive under dest.
func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractZipEntry writes one zip entry to target, creating parent
// directories as needed.
func extractZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		rc.Close()
		return err
	}
	_, err = io.Copy(out, rc)
	rc.Close()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// extractTar extracts a compressed tarball under dest. The decompressor is
// chosen by format: gzip for FormatTarGz, xz for FormatTarXz.
func extractTar(format Format, src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	var reader io.Reader
	switch format {
	case FormatTarGz:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		defer gr.Close()
		reader = gr
	case FormatTarXz:
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	default:
		return fmt.Errorf("not a tar format: %s", format)
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// extract7z extracts a .7z archive under dest using the sevenzip library.
func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open 7z %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// findEntry returns the first zip entry whose path ends with name, nil if
// none does. Suffix matching tolerates the SDK-style nested directory
// layouts the upstream archives use.
func findEntry(files []*zip.File, name string) *zip.File {
	for _, f := range files {
		if strings.HasSuffix(f.Name, name) {
			return f
		}
	}
	return nil
}

// findNamed walks root for a file whose base name equals name and returns
// the first match, "" if there is none. Scanning stops at the first hit.
func findNamed(root, name string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == name {
			match = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}
	return match, nil
}

// removeQuiet removes a path, logging rather than returning any error.
// Used for consumed archives and failed partial files.
func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("[ERROR] Failed to remove %s: %v\n", path, err)
	}
}
