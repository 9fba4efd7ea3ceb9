package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scorers"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scoring"
)

func passingRecord() scoring.Record {
	return scoring.Record{
		Name:              "bert-base",
		Category:          scoring.CategoryModel,
		NetScore:          0.8,
		RampUpTime:        0.7,
		BusFactor:         1.0,
		PerformanceClaims: 1.0,
		License:           1.0,
		Size:              scoring.SizeScore{RaspberryPi: 0.6, JetsonNano: 0.8, DesktopPC: 0.97, AWSServer: 0.99},
		DatasetAndCode:    1.0,
		DatasetQuality:    0.65,
		CodeQuality:       0.7,
		Reproducibility:   0.5,
		Reviewedness:      0.9,
		Treescore:         0.75,
	}
}

func TestAdmitPassingRecord(t *testing.T) {
	decision := Admit(passingRecord())

	assert.True(t, decision.Admitted)
	assert.Empty(t, decision.Failing)
}

func TestAdmitRejectsLowMetrics(t *testing.T) {
	record := passingRecord()
	record.License = 0.0
	record.CodeQuality = 0.4

	decision := Admit(record)

	assert.False(t, decision.Admitted)
	assert.ElementsMatch(t, []string{scorers.NameLicense, scorers.NameCodeQuality}, decision.Failing)
}

func TestAdmitSkipsReviewednessSentinel(t *testing.T) {
	record := passingRecord()
	record.Reviewedness = scorers.NotApplicable

	decision := Admit(record)

	assert.True(t, decision.Admitted, "the -1 sentinel skips the reviewedness check")
}

func TestAdmitFailsLowReviewedness(t *testing.T) {
	record := passingRecord()
	record.Reviewedness = 0.2

	decision := Admit(record)

	assert.False(t, decision.Admitted)
	assert.Contains(t, decision.Failing, scorers.NameReviewedness)
}

func TestAdmitJudgesSizeByWorstPlatform(t *testing.T) {
	record := passingRecord()
	record.Size.RaspberryPi = 0.2

	decision := Admit(record)

	assert.False(t, decision.Admitted)
	assert.Contains(t, decision.Failing, scorers.NameSize)
}
