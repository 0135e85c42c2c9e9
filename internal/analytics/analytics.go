// Package analytics aggregates observed yeast attenuation across finished
// brew sessions. It is descriptive only: the stats it produces are shown to
// the brewer, never fed back into recipe calculations.
package analytics

import (
	"fmt"
)

// Confidence tiers and the sample counts that earn them.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	HighConfidenceCount   = 20
	MediumConfidenceCount = 5
)

// Comparison directions for CompareToSpec.
const (
	DirectionHigher = "higher"
	DirectionLower  = "lower"
	DirectionMatch  = "match"
)

// Summary is the aggregate over one yeast's observed attenuation samples.
type Summary struct {
	Average    float64
	Count      int
	Confidence string
}

// Difference compares an observed average against a published figure.
// Magnitude is in attenuation percentage points.
type Difference struct {
	Direction string
	Magnitude float64
}

// Confidence returns the tier a sample count earns.
func Confidence(count int) string {
	switch {
	case count >= HighConfidenceCount:
		return ConfidenceHigh
	case count >= MediumConfidenceCount:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Aggregate computes the arithmetic mean of the samples and the confidence
// tier their count earns. Empty input yields a zero summary at low
// confidence.
func Aggregate(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{Confidence: ConfidenceLow}
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return Summary{
		Average:    sum / float64(len(samples)),
		Count:      len(samples),
		Confidence: Confidence(len(samples)),
	}
}

// CompareToSpec compares observed average attenuation against the published
// figure for the strain.
func CompareToSpec(published, observed float64) Difference {
	switch {
	case observed > published:
		return Difference{Direction: DirectionHigher, Magnitude: observed - published}
	case observed < published:
		return Difference{Direction: DirectionLower, Magnitude: published - observed}
	default:
		return Difference{Direction: DirectionMatch}
	}
}

// FormatDifference renders a Difference for display.
func FormatDifference(d Difference) string {
	if d.Direction == DirectionMatch {
		return "matches published attenuation"
	}
	return fmt.Sprintf("%.1f points %s than published", d.Magnitude, d.Direction)
}
