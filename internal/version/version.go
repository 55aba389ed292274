// Package version records the build identity of the crest tooling.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// Stamped at release time via -ldflags; defaults identify a source build.
var (
	// Number is the semantic version of the crest CLI.
	Number = "0.1.0"
	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = ""
	// BuildDate is the build timestamp in ISO-8601.
	BuildDate = ""
)

var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Pretty renders Number with each version segment tinted, for the CLI
// banner. A commit hash, when stamped, is appended untinted.
func Pretty() string {
	parts := strings.SplitN(Number, ".", len(segmentColors))
	for i, part := range parts {
		parts[i] = segmentColors[i].Sprint(part)
	}
	out := strings.Join(parts, ".")
	if GitCommit != "" {
		out += " (" + GitCommit + ")"
	}
	return out
}
