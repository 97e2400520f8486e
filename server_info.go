package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blang/semver"
)

// supportedMajor is the service API major version this console speaks.
const supportedMajor = 1

// ServerInfo is the description served at GET /.
type ServerInfo struct {
	Name              string            `json:"name"`
	Version           string            `json:"version"`
	Description       string            `json:"description"`
	Endpoints         map[string]string `json:"endpoints"`
	SupportedCommands []string          `json:"supported_commands"`
}

// parseVersion parses a version string, handling a "v" prefix
func parseVersion(v string) (semver.Version, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	return semver.ParseTolerant(v)
}

// Compatible reports whether the service speaks the API major version this
// console understands.
func (i ServerInfo) Compatible() (bool, error) {
	v, err := parseVersion(i.Version)
	if err != nil {
		return false, fmt.Errorf("invalid server version %q: %w", i.Version, err)
	}
	return v.Major == supportedMajor, nil
}

// Markdown formats the description for the help renderer.
func (i ServerInfo) Markdown(baseURL string) string {
	var b strings.Builder
	name := i.Name
	if name == "" {
		name = "mascotDB"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if i.Description != "" {
		b.WriteString(i.Description + "\n\n")
	}
	fmt.Fprintf(&b, "- **Address:** `%s`\n", baseURL)
	if i.Version != "" {
		fmt.Fprintf(&b, "- **Version:** %s\n", i.Version)
	}
	if ok, err := i.Compatible(); err != nil {
		fmt.Fprintf(&b, "\n> Warning: could not check the server version (%v)\n", err)
	} else if !ok {
		fmt.Fprintf(&b, "\n> Warning: server API version %s is not %d.x; replies may not render correctly\n",
			i.Version, supportedMajor)
	}

	if len(i.Endpoints) > 0 {
		b.WriteString("\n## Endpoints\n\n")
		paths := make([]string, 0, len(i.Endpoints))
		for p := range i.Endpoints {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(&b, "- `%s` %s\n", p, i.Endpoints[p])
		}
	}

	if len(i.SupportedCommands) > 0 {
		b.WriteString("\n## Supported commands\n\n```sql\n")
		for _, c := range i.SupportedCommands {
			b.WriteString(c + "\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}
