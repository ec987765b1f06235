package installer

import (
	"context"
	"path"
	"path/filepath"

	"binfetch/internal/layout"
	"binfetch/internal/logger"
	"binfetch/internal/manifest"
)

// Outcome classifies one (tool, target) cell after all its executables
// reached a terminal state. Skipped (no published build) is deliberately
// distinct from Failed (build exists but nothing could be installed).
type Outcome int

const (
	// OutcomeSkipped means the tool has no artifact for the target; no
	// fetch was attempted.
	OutcomeSkipped Outcome = iota
	// OutcomeFailed means every expected executable failed to install.
	OutcomeFailed
	// OutcomePartial means some, but not all, expected executables
	// installed.
	OutcomePartial
	// OutcomeFull means every expected executable installed.
	OutcomeFull
)

// Result is the terminal state of one (tool, target) cell.
type Result struct {
	Target    layout.Target
	Outcome   Outcome
	Installed int
	Expected  int
}

// Runner drives one tool at a time across the full target matrix. It owns
// nothing persistent itself: the manifest belongs to the caller and is only
// mutated through Record on successful installs.
type Runner struct {
	Downloader *Downloader
	Layout     *layout.Layout
	Manifest   *manifest.Manifest
}

// RunTool iterates the support matrix for one tool, fetching, extracting
// and placing its executables, and returns one Result per target. Per-cell
// failures are printed and counted but never stop the loop; the only output
// per cell is a one-line "k/expected" summary (or "skip").
func (r *Runner) RunTool(ctx context.Context, spec ToolSpec) []Result {
	logger.Info("\n=== %s ===\n", spec.Title)

	results := make([]Result, 0, len(layout.Targets()))
	for _, target := range layout.Targets() {
		artifacts := spec.Resolve(target)
		if len(artifacts) == 0 {
			logger.Warn("%s: skip\n", target)
			results = append(results, Result{Target: target, Outcome: OutcomeSkipped, Expected: spec.Expected})
			continue
		}

		installed := 0
		for _, artifact := range artifacts {
			installed += r.installArtifact(ctx, spec, target, artifact)
		}

		outcome := OutcomeFailed
		switch {
		case installed >= spec.Expected:
			outcome = OutcomeFull
		case installed > 0:
			outcome = OutcomePartial
		}
		logger.Info("%s: %d/%d\n", target, installed, spec.Expected)
		results = append(results, Result{Target: target, Outcome: outcome, Installed: installed, Expected: spec.Expected})
	}
	return results
}

// installArtifact runs the fetch → extract → place → record sequence for
// one artifact and returns how many executables it installed. All errors
// are converted to console lines here; nothing propagates.
func (r *Runner) installArtifact(ctx context.Context, spec ToolSpec, target layout.Target, artifact Artifact) int {
	destDir := r.Layout.Dir(target, spec.Name)
	archivePath := filepath.Join(destDir, artifact.ArchiveName)
	key := layout.Key{Platform: target.Platform, Arch: target.Arch, Tool: spec.Name}
	setMode := !target.Windows()

	if err := r.Downloader.Fetch(ctx, artifact.URL, archivePath); err != nil {
		logger.Error("  X %s: %s\n", path.Base(artifact.URL), truncate(err.Error(), 50))
		removeQuiet(archivePath)
		return 0
	}

	switch artifact.Strategy {
	case StrategyStream:
		name := artifact.Executables[0]
		if err := installGzipped(archivePath, filepath.Join(destDir, name), setMode); err != nil {
			logger.Error("  X extract %s: %s\n", name, truncate(err.Error(), 40))
			return 0
		}
		r.Manifest.Record(key, r.Layout.RelPath(target, spec.Name, name))
		return 1

	case StrategyScan:
		names, err := installMatching(archivePath, destDir, artifact.Executables, setMode)
		if err != nil {
			logger.Error("  X extract: %s\n", truncate(err.Error(), 40))
		}
		for _, name := range names {
			r.Manifest.Record(key, r.Layout.RelPath(target, spec.Name, name))
		}
		return len(names)

	case StrategyWalk:
		name := artifact.Executables[0]
		found, err := installNamed(archivePath, artifact.Format, destDir, name, setMode)
		if err != nil {
			logger.Error("  X extract: %s\n", truncate(err.Error(), 40))
			return 0
		}
		if !found {
			logger.Debug("[DEBUG] %s not present in archive for %s\n", name, target)
			return 0
		}
		r.Manifest.Record(key, r.Layout.RelPath(target, spec.Name, name))
		return 1

	default:
		logger.Error("  X unknown install strategy for %s\n", spec.Name)
		return 0
	}
}

// truncate shortens an error message for the one-line console diagnostics.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
