// Package version holds the build stamp of the cmsclean binary and the
// identifiers derived from it.
//
// The variables are overwritten at link time:
//
//	go build -ldflags "-X github.com/jmylchreest/cmsclean/internal/version.Version=1.2.0 \
//	  -X github.com/jmylchreest/cmsclean/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the program name used in output and User-Agent headers.
const Name = "cmsclean"

var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the build stamp as reported by `cmsclean version --json`.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	// UserAgent is what the link auditor sends unless configured otherwise.
	UserAgent string `json:"user_agent"`
}

func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		UserAgent: UserAgent("linkaudit"),
	}
}

// String is the version with a -dirty suffix for unclean builds.
func String() string {
	if Dirty == "true" {
		return Version + "-dirty"
	}
	return Version
}

// UserAgent names a cmsclean component in HTTP requests, for example
// "cmsclean-linkaudit/1.2.0". An empty component yields "cmsclean/1.2.0".
func UserAgent(component string) string {
	if component == "" {
		return Name + "/" + String()
	}
	return Name + "-" + component + "/" + String()
}

// Full renders the build stamp for the version command.
func Full() string {
	info := Get()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", info.Name, String())
	fmt.Fprintf(&sb, "  Commit:     %s\n", info.Commit)
	if info.Dirty {
		sb.WriteString("  Dirty:      yes\n")
	}
	fmt.Fprintf(&sb, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(&sb, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "  OS/Arch:    %s\n", info.Platform)
	fmt.Fprintf(&sb, "  User-Agent: %s", info.UserAgent)
	return sb.String()
}
