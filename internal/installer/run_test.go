package installer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"binfetch/internal/config"
	"binfetch/internal/layout"
	"binfetch/internal/manifest"
)

// newArtifactServer serves the given path -> body mapping, returning 404
// for everything else, and counts requests.
func newArtifactServer(t *testing.T, artifacts map[string][]byte, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		body, ok := artifacts[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, err := w.Write(body); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
}

func newTestRunner(t *testing.T, man *manifest.Manifest) *Runner {
	t.Helper()
	lay := layout.New(t.TempDir(), ToolNames())
	if err := lay.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	return &Runner{Downloader: newTestDownloader(), Layout: lay, Manifest: man}
}

func resultFor(t *testing.T, results []Result, target layout.Target) Result {
	t.Helper()
	for _, result := range results {
		if result.Target == target {
			return result
		}
	}
	t.Fatalf("no result for target %s", target)
	return Result{}
}

// ffmpegArtifacts returns the gzip artifacts for every ffmpeg target.
func ffmpegArtifacts(t *testing.T) map[string][]byte {
	t.Helper()
	artifacts := map[string][]byte{}
	for _, platform := range []string{"win32-x64", "darwin-x64", "darwin-arm64", "linux-x64", "linux-arm64"} {
		for _, executable := range []string{"ffmpeg", "ffprobe"} {
			artifacts["/"+executable+"-"+platform+".gz"] = gzipBytes(t, []byte(executable+" for "+platform))
		}
	}
	return artifacts
}

// bento4Zip builds a Bento4 SDK zip holding the given executable names.
func bento4Zip(t *testing.T, names ...string) []byte {
	t.Helper()
	entries := map[string]string{}
	for _, name := range names {
		entries["Bento4-SDK/bin/"+name] = "binary " + name
	}
	return zipBytes(t, entries)
}

func TestRunToolSkipsUnresolvedTargets(t *testing.T) {
	var requests atomic.Int64
	server := newArtifactServer(t, nil, &requests)
	defer server.Close()

	man := manifest.New()
	runner := newTestRunner(t, man)

	spec := ToolSpec{
		Name:     "phantom",
		Title:    "Phantom",
		Expected: 1,
		Resolve:  func(layout.Target) []Artifact { return nil },
	}
	results := runner.RunTool(context.Background(), spec)

	if requests.Load() != 0 {
		t.Errorf("expected no fetches for unresolvable targets, got %d", requests.Load())
	}
	for _, result := range results {
		if result.Outcome != OutcomeSkipped {
			t.Errorf("target %s: expected skip, got %v", result.Target, result.Outcome)
		}
	}
	if man.Len() != 0 {
		t.Errorf("manifest should be empty, has %d keys", man.Len())
	}
}

func TestRunToolFetchFailureDoesNotStopRun(t *testing.T) {
	// The windows artifacts are deliberately absent, so its cell fails
	// while every other target still installs.
	artifacts := ffmpegArtifacts(t)
	delete(artifacts, "/ffmpeg-win32-x64.gz")
	delete(artifacts, "/ffprobe-win32-x64.gz")

	server := newArtifactServer(t, artifacts, nil)
	defer server.Close()

	man := manifest.New()
	runner := newTestRunner(t, man)
	spec := FFmpegSpec(config.ToolSource{BaseURL: server.URL})

	results := runner.RunTool(context.Background(), spec)

	windows := layout.Target{Platform: layout.PlatformWindows, Arch: layout.ArchX64}
	if got := resultFor(t, results, windows); got.Outcome != OutcomeFailed || got.Installed != 0 {
		t.Errorf("windows cell: expected failed 0/2, got %+v", got)
	}

	linux := layout.Target{Platform: layout.PlatformLinux, Arch: layout.ArchArm64}
	if got := resultFor(t, results, linux); got.Outcome != OutcomeFull || got.Installed != 2 {
		t.Errorf("linux-arm64 cell: expected full 2/2, got %+v", got)
	}

	if man.Len() != 4 {
		t.Errorf("expected manifest entries for 4 unaffected targets, got %d", man.Len())
	}
	windowsKey := layout.Key{Platform: layout.PlatformWindows, Arch: layout.ArchX64, Tool: ToolFFmpeg}
	if man.Paths(windowsKey) != nil {
		t.Errorf("failed target must not be recorded: %v", man.Paths(windowsKey))
	}
}

func TestRunToolPartialZipInstall(t *testing.T) {
	// Every SDK zip is missing mp4dump, so each cell lands on 3/4.
	artifacts := map[string][]byte{
		"/Bento4-SDK-1-6-0-641.x86_64-microsoft-win32.zip": bento4Zip(t, "mp4decrypt.exe", "mp4encrypt.exe", "mp4info.exe"),
		"/Bento4-SDK-1-6-0-641.universal-apple-macosx.zip": bento4Zip(t, "mp4decrypt", "mp4encrypt", "mp4info"),
		"/Bento4-SDK-1-6-0-641.x86_64-unknown-linux.zip":   bento4Zip(t, "mp4decrypt", "mp4encrypt", "mp4info"),
	}
	server := newArtifactServer(t, artifacts, nil)
	defer server.Close()

	man := manifest.New()
	runner := newTestRunner(t, man)
	spec := Bento4Spec(config.ToolSource{BaseURL: server.URL, Version: "1-6-0-641"})

	results := runner.RunTool(context.Background(), spec)

	for _, result := range results {
		if result.Outcome != OutcomePartial {
			t.Errorf("target %s: expected partial, got %+v", result.Target, result)
		}
		if result.Installed != 3 || result.Expected != 4 {
			t.Errorf("target %s: expected 3/4, got %d/%d", result.Target, result.Installed, result.Expected)
		}
	}

	windowsKey := layout.Key{Platform: layout.PlatformWindows, Arch: layout.ArchX64, Tool: ToolBento4}
	paths := man.Paths(windowsKey)
	if len(paths) != 3 {
		t.Fatalf("expected 3 recorded paths for windows, got %v", paths)
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, ".exe") {
			t.Errorf("windows path missing .exe suffix: %s", p)
		}
		if !strings.HasPrefix(p, "windows/x64/bento4/") {
			t.Errorf("unexpected relative path: %s", p)
		}
	}
}

func TestRunAllToolsEndToEnd(t *testing.T) {
	artifacts := ffmpegArtifacts(t)
	artifacts["/Bento4-SDK-1-6-0-641.x86_64-microsoft-win32.zip"] = bento4Zip(t, "mp4decrypt.exe", "mp4encrypt.exe", "mp4info.exe", "mp4dump.exe")
	artifacts["/Bento4-SDK-1-6-0-641.universal-apple-macosx.zip"] = bento4Zip(t, "mp4decrypt", "mp4encrypt", "mp4info", "mp4dump")
	artifacts["/Bento4-SDK-1-6-0-641.x86_64-unknown-linux.zip"] = bento4Zip(t, "mp4decrypt", "mp4encrypt", "mp4info", "mp4dump")
	artifacts["/megatools-1.11.3.20250401-win64.zip"] = zipBytes(t, map[string]string{
		"megatools-win64/megatools.exe": "mega exe",
	})
	for _, build := range []string{"linux-x86_64", "linux-aarch64"} {
		artifacts["/megatools-1.11.3.20250401-"+build+".tar.gz"] = tarGzBytes(t, map[string]string{
			"megatools-1.11.3/megatools": "mega " + build,
		})
	}

	server := newArtifactServer(t, artifacts, nil)
	defer server.Close()

	cfg := config.Default()
	cfg.FFmpeg.BaseURL = server.URL
	cfg.Bento4.BaseURL = server.URL
	cfg.Megatools.BaseURL = server.URL

	man := manifest.New()
	runner := newTestRunner(t, man)

	for _, spec := range Specs(cfg) {
		for _, result := range runner.RunTool(context.Background(), spec) {
			if result.Outcome != OutcomeFull {
				t.Errorf("%s %s: expected full success, got %d/%d", spec.Name, result.Target, result.Installed, result.Expected)
			}
		}
	}

	// One key per (platform, arch, tool): 5 targets x 3 tools.
	if man.Len() != 15 {
		t.Fatalf("expected 15 manifest keys, got %d", man.Len())
	}

	expectedCounts := map[string]int{ToolFFmpeg: 2, ToolBento4: 4, ToolMegatools: 1}
	for _, target := range layout.Targets() {
		for tool, count := range expectedCounts {
			key := layout.Key{Platform: target.Platform, Arch: target.Arch, Tool: tool}
			if got := len(man.Paths(key)); got != count {
				t.Errorf("%s: expected %d paths, got %d", key, count, got)
			}
		}
	}

	windowsFFmpeg := layout.Key{Platform: layout.PlatformWindows, Arch: layout.ArchX64, Tool: ToolFFmpeg}
	paths := man.Paths(windowsFFmpeg)
	want := map[string]bool{
		"windows/x64/ffmpeg/ffmpeg.exe":  true,
		"windows/x64/ffmpeg/ffprobe.exe": true,
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected windows ffmpeg path: %s", p)
		}
	}
}
