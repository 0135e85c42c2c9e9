package brewcalc

import (
	"fmt"
)

// DefaultAttenuation is the apparent attenuation percent assumed when no
// yeast line carries attenuation data. Metrics computed with it are marked
// Estimated so callers can surface the assumption instead of failing.
const DefaultAttenuation = 75.0

// GravityPoints returns one fermentable's contribution in gravity points:
// amount × potential × (efficiency/100) / batch. Amount is in pounds,
// potential in ppg, batch in gallons.
func GravityPoints(amountLb, potential, batchGal, efficiencyPct float64) (float64, error) {
	if batchGal <= 0 {
		return 0, fmt.Errorf("%w: %v gal", ErrInvalidBatchSize, batchGal)
	}
	if amountLb < 0 {
		return 0, fmt.Errorf("%w: %v lb", ErrInvalidAmount, amountLb)
	}
	return amountLb * potential * (efficiencyPct / 100) / batchGal, nil
}

// EstimateOG sums gravity points over the fermentable lines (grain and
// other) and returns 1.0 + points/1000. Hop and yeast lines contribute
// nothing. Mash efficiency applies uniformly to all fermentables.
func EstimateOG(spec RecipeSpec, lines []Line) (float64, error) {
	batch, err := batchGallons(spec)
	if err != nil {
		return 0, err
	}

	var points float64
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return 0, err
		}
		if line.Type != Grain && line.Type != Other {
			continue
		}
		lb, err := massLb(line)
		if err != nil {
			return 0, err
		}
		p, err := GravityPoints(lb, line.Potential, batch, spec.Efficiency)
		if err != nil {
			return 0, err
		}
		points += p
	}
	return 1.0 + points/1000, nil
}

// EstimateFG applies apparent attenuation to an original gravity:
// fg = og − (og − 1) × attenuation/100.
func EstimateFG(og, attenuationPct float64) float64 {
	return og - (og-1)*attenuationPct/100
}

// WeightedAttenuation returns the amount-weighted mean attenuation of the
// yeast lines that carry attenuation data, and whether any did. Lines
// without data are excluded from the weighting. When every contributing
// line has a zero amount the plain mean is used.
func WeightedAttenuation(lines []Line) (float64, bool) {
	var weighted, weight, sum float64
	var n int
	for _, line := range lines {
		if line.Type != Yeast || line.Attenuation <= 0 {
			continue
		}
		weighted += line.Attenuation * line.Amount
		weight += line.Amount
		sum += line.Attenuation
		n++
	}
	if n == 0 {
		return 0, false
	}
	if weight <= 0 {
		return sum / float64(n), true
	}
	return weighted / weight, true
}

// ABV returns alcohol by volume percent: (og − fg) × 131.25. A final
// gravity at or above the original yields 0 — fermentation hasn't started,
// which is a state, not an error.
func ABV(og, fg float64) float64 {
	if fg >= og {
		return 0
	}
	return (og - fg) * 131.25
}
