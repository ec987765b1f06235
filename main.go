package main

import (
	"binfetch/cmd" // CLI commands and execution logic
)

// main is the program entry point. It delegates to cmd.Execute() which
// handles command line argument parsing and execution.
//
// binfetch fetches prebuilt third-party executables for a fixed matrix of
// operating systems and CPU architectures:
//   - the ffmpeg/ffprobe transcoder pair (single-entry gzip per executable)
//   - the Bento4 ISO-BMFF tool set (one SDK zip per target)
//   - the megatools cloud-storage CLI (zip on windows, tar.gz elsewhere)
//
// Each artifact is downloaded, unpacked, and the executables placed under
// <base>/<platform>/<arch>/<tool>/. A JSON manifest maps every
// "{platform}_{arch}_{tool}" key to the relative paths installed for it.
//
// Error handling strategy:
//   - Failure to create the directory layout is fatal and aborts before any
//     network activity.
//   - Per-target download or extraction failures are printed and counted
//     but never stop the run; every tool visits every matrix cell.
//   - The manifest is written exactly once, after all tools finish; a write
//     failure there is reported as the run's final failure while the
//     installed binaries remain on disk.
func main() {
	cmd.Execute()
}
