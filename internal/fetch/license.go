package fetch

import (
	"context"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// licenseStrategy is one step in the license fallback chain. The boolean
// reports whether the strategy produced a value.
type licenseStrategy func(ctx context.Context) (string, bool)

// License resolves the model's license string through an ordered fallback
// chain: README YAML frontmatter, then a "## License" section in the README
// body, then the GitHub LICENSE file matched against well-known license
// texts. "Unknown" when every strategy comes up empty.
func (f *Fetcher) License(ctx context.Context) string {
	v := f.cached("license", func() interface{} {
		strategies := []licenseStrategy{
			f.licenseFromFrontmatter,
			f.licenseFromReadmeHeading,
			f.licenseFromGithubFile,
		}
		for _, strategy := range strategies {
			if value, ok := strategy(ctx); ok {
				return value
			}
		}
		return "Unknown"
	})
	return v.(string)
}

type readmeFrontmatter struct {
	License string `yaml:"license"`
}

func (f *Fetcher) licenseFromFrontmatter(ctx context.Context) (string, bool) {
	raw := f.RawModelReadme(ctx)
	if !strings.HasPrefix(raw, "---") {
		return "", false
	}

	rest := raw[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}

	var fm readmeFrontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		// Malformed frontmatter is treated as absence, not an error.
		return "", false
	}

	fm.License = strings.TrimSpace(fm.License)
	return fm.License, fm.License != ""
}

func (f *Fetcher) licenseFromReadmeHeading(ctx context.Context) (string, bool) {
	lines := strings.Split(f.RawModelReadme(ctx), "\n")

	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if !strings.HasPrefix(trimmed, "## license") {
			continue
		}
		for _, next := range lines[i+1:] {
			value := strings.TrimSpace(next)
			if value == "" {
				continue
			}
			if strings.HasPrefix(value, "#") {
				// Next section started before any content.
				break
			}
			return value, true
		}
		break
	}

	return "", false
}

// licenseFileKeywords maps recognizable license text markers to canonical
// identifiers, checked in order.
var licenseFileKeywords = []struct {
	marker    string
	qualifier string
	name      string
}{
	{"MIT LICENSE", "", "MIT"},
	{"APACHE LICENSE", "", "Apache-2.0"},
	{"GNU GENERAL PUBLIC LICENSE", "VERSION 3", "GPL-3.0"},
	{"GNU GENERAL PUBLIC LICENSE", "VERSION 2", "GPL-2.0"},
	{"BSD", "", "BSD-3-Clause"},
}

func (f *Fetcher) licenseFromGithubFile(ctx context.Context) (string, bool) {
	if !f.ref.HasCode() {
		return "", false
	}

	content, err := f.gh.RawFile(ctx, f.ref.CodeOwner, f.ref.CodeRepo, "LICENSE")
	if err != nil {
		return "", false
	}

	upper := strings.ToUpper(content)
	for _, candidate := range licenseFileKeywords {
		if !strings.Contains(upper, candidate.marker) {
			continue
		}
		if candidate.qualifier != "" && !strings.Contains(upper, candidate.qualifier) {
			continue
		}
		return candidate.name, true
	}

	return "", false
}

func parseModelConfig(raw string) (*modelConfig, error) {
	var cfg modelConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
