package scorers

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/fetch"
)

// openSourceLicenses is the fixed allow-list matched by substring against the
// lowercased resolved license.
var openSourceLicenses = []string{
	"mit",
	"apache",
	"bsd",
	"gpl",
	"lgpl",
	"cc0",
	"unlicense",
	"public domain",
}

// License scores 1.0 when the resolved license matches the open-source
// allow-list and 0.0 otherwise, including the "Unknown" fallback.
type License struct{}

func (License) Name() string { return NameLicense }

func (License) Calculate(ctx context.Context, f *fetch.Fetcher) Result {
	return run(NameLicense, 0.0, func() (float64, map[string]float64) {
		license := strings.ToLower(f.License(ctx))
		for _, allowed := range openSourceLicenses {
			if strings.Contains(license, allowed) {
				return 1.0, nil
			}
		}
		return 0.0, nil
	})
}
