package brewcalc

import (
	"fmt"
	"math"
)

// WhirlpoolUtilization is the fixed utilization applied to whirlpool hop
// additions. Isomerization below boiling is poorly modeled by the Tinseth
// time curve, so whirlpool additions use this constant instead.
const WhirlpoolUtilization = 0.10

// BoilUtilization returns the Tinseth utilization for a boil addition:
// bigness factor 1.65 × 0.000125^(og−1) times the boil time factor
// (1 − e^(−0.04·t)) / 4.15, with t in minutes.
func BoilUtilization(og, boilMin float64) float64 {
	bigness := 1.65 * math.Pow(0.000125, og-1)
	timeFactor := (1 - math.Exp(-0.04*boilMin)) / 4.15
	return bigness * timeFactor
}

// Bitterness returns one hop addition's IBU contribution:
// utilization × (alpha/100) × ounces × 7490 / gallons.
func Bitterness(amountOz, alphaPct, utilization, batchGal float64) (float64, error) {
	if batchGal <= 0 {
		return 0, fmt.Errorf("%w: %v gal", ErrInvalidBatchSize, batchGal)
	}
	if amountOz < 0 {
		return 0, fmt.Errorf("%w: %v oz", ErrInvalidAmount, amountOz)
	}
	return utilization * (alphaPct / 100) * amountOz * 7490 / batchGal, nil
}

// TotalIBU sums IBU contributions over the hop lines. Boil additions use
// the Tinseth curve with the line's own time, whirlpool additions use
// WhirlpoolUtilization, and dry hops contribute exactly zero. Higher OG
// lowers utilization, so the same hop bill yields fewer IBUs in a bigger
// beer.
func TotalIBU(spec RecipeSpec, lines []Line, og float64) (float64, error) {
	batch, err := batchGallons(spec)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, line := range lines {
		if line.Type != Hop {
			continue
		}
		if err := validateLine(line); err != nil {
			return 0, err
		}

		var utilization float64
		switch line.Use {
		case UseBoil, "":
			utilization = BoilUtilization(og, line.Time)
		case UseWhirlpool:
			utilization = WhirlpoolUtilization
		case UseDryHop:
			continue
		default:
			return 0, fmt.Errorf("brewcalc: unknown hop use %q (%s)", line.Use, line.Name)
		}

		oz, err := massOz(line)
		if err != nil {
			return 0, err
		}
		ibu, err := Bitterness(oz, line.AlphaAcid, utilization, batch)
		if err != nil {
			return 0, err
		}
		total += ibu
	}
	return total, nil
}
