package registry

import (
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scorers"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scoring"
)

// AdmissionThreshold is the minimum every metric must reach for a model to be
// admitted to the registry.
const AdmissionThreshold = 0.5

// Decision is the admission outcome with the metrics that fell short.
type Decision struct {
	Admitted bool     `json:"admitted"`
	Failing  []string `json:"failing_metrics,omitempty"`
}

// Admit checks every non-latency metric against the admission threshold. A
// reviewedness of -1 means "no code repository to review" and skips that
// check rather than failing it. The size metric is judged by its worst
// platform.
func Admit(record scoring.Record) Decision {
	checks := []struct {
		name  string
		value float64
	}{
		{scorers.NameLicense, record.License},
		{scorers.NameRampUp, record.RampUpTime},
		{scorers.NameBusFactor, record.BusFactor},
		{scorers.NamePerformanceClaims, record.PerformanceClaims},
		{scorers.NameSize, minPlatform(record.Size)},
		{scorers.NameDatasetAndCode, record.DatasetAndCode},
		{scorers.NameDatasetQuality, record.DatasetQuality},
		{scorers.NameCodeQuality, record.CodeQuality},
		{scorers.NameReproducibility, record.Reproducibility},
		{scorers.NameTreescore, record.Treescore},
		{"net_score", record.NetScore},
	}

	var failing []string
	for _, check := range checks {
		if check.value < AdmissionThreshold {
			failing = append(failing, check.name)
		}
	}

	if record.Reviewedness != scorers.NotApplicable && record.Reviewedness < AdmissionThreshold {
		failing = append(failing, scorers.NameReviewedness)
	}

	return Decision{
		Admitted: len(failing) == 0,
		Failing:  failing,
	}
}

func minPlatform(size scoring.SizeScore) float64 {
	min := size.RaspberryPi
	for _, v := range []float64{size.JetsonNano, size.DesktopPC, size.AWSServer} {
		if v < min {
			min = v
		}
	}
	return min
}
