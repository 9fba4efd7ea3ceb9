// Package scoring runs the full metric suite for one model reference and
// aggregates the results into a single evaluation record.
package scoring

// SizeScore carries the per-platform deployability scores.
type SizeScore struct {
	RaspberryPi float64 `json:"raspberry_pi"`
	JetsonNano  float64 `json:"jetson_nano"`
	DesktopPC   float64 `json:"desktop_pc"`
	AWSServer   float64 `json:"aws_server"`
}

// Record is the wire-format evaluation result. Field declaration order is the
// output order and must not be rearranged.
type Record struct {
	Name     string `json:"name"`
	Category string `json:"category"`

	NetScore        float64 `json:"net_score"`
	NetScoreLatency int64   `json:"net_score_latency"`

	RampUpTime        float64 `json:"ramp_up_time"`
	RampUpTimeLatency int64   `json:"ramp_up_time_latency"`

	BusFactor        float64 `json:"bus_factor"`
	BusFactorLatency int64   `json:"bus_factor_latency"`

	PerformanceClaims        float64 `json:"performance_claims"`
	PerformanceClaimsLatency int64   `json:"performance_claims_latency"`

	License        float64 `json:"license"`
	LicenseLatency int64   `json:"license_latency"`

	Size        SizeScore `json:"size_score"`
	SizeLatency int64     `json:"size_score_latency"`

	DatasetAndCode        float64 `json:"dataset_and_code_score"`
	DatasetAndCodeLatency int64   `json:"dataset_and_code_score_latency"`

	DatasetQuality        float64 `json:"dataset_quality"`
	DatasetQualityLatency int64   `json:"dataset_quality_latency"`

	CodeQuality        float64 `json:"code_quality"`
	CodeQualityLatency int64   `json:"code_quality_latency"`

	Reproducibility        float64 `json:"reproducibility"`
	ReproducibilityLatency int64   `json:"reproducibility_latency"`

	Reviewedness        float64 `json:"reviewedness"`
	ReviewednessLatency int64   `json:"reviewedness_latency"`

	Treescore        float64 `json:"treescore"`
	TreescoreLatency int64   `json:"treescore_latency"`
}

// CategoryModel is the only artifact category the engine evaluates.
const CategoryModel = "MODEL"
