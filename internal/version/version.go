// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides a single location to house the version
// information for the mining simulation engine and the agent binary built
// from the same repository.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// semanticAlphabet defines the allowed characters for the pre-release and
// build metadata portions of a semantic version string.
const semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

// These variables define the application version and follow the semantic
// versioning 2.0.0 spec (https://semver.org/).
var (
	// Version is the application version per the semantic versioning 2.0.0
	// spec.  It is defined as a variable so it can be overridden during the
	// build process with:
	// '-ldflags "-X github.com/Fountain5405/monerosim-sub005/internal/version.Version=fullsemver"'
	// if needed.
	Version = "0.2.0-pre"
)

// vcsCommitID returns the version control system short commit hash that was
// associated with the build or an empty string when it is not available.
func vcsCommitID() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var vcs, revision string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs":
			vcs = bs.Value
		case "vcs.revision":
			revision = bs.Value
		}
	}
	if vcs == "" {
		return ""
	}
	if vcs == "git" && len(revision) > 9 {
		revision = revision[:9]
	}
	return revision
}

// normalize returns the passed string stripped of all characters which are
// not valid according to the semantic versioning guidelines for pre-release
// and build metadata strings.
func normalize(str string) string {
	var b strings.Builder
	for _, r := range str {
		if strings.ContainsRune(semanticAlphabet, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String returns the application version along with the short commit hash it
// was built from when available, as a properly formed string per the
// semantic versioning 2.0.0 spec.
func String() string {
	if commit := normalize(vcsCommitID()); commit != "" {
		return fmt.Sprintf("%s+%s", Version, commit)
	}
	return Version
}
