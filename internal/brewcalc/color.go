package brewcalc

import (
	"fmt"
	"math"
)

// MCU returns malt color units for one fermentable:
// amount (lb) × color (°L) / batch (gal).
func MCU(amountLb, lovibond, batchGal float64) (float64, error) {
	if batchGal <= 0 {
		return 0, fmt.Errorf("%w: %v gal", ErrInvalidBatchSize, batchGal)
	}
	if amountLb < 0 {
		return 0, fmt.Errorf("%w: %v lb", ErrInvalidAmount, amountLb)
	}
	return amountLb * lovibond / batchGal, nil
}

// MoreySRM converts malt color units to SRM with Morey's power curve:
// 1.4922 × mcu^0.6859. MCU and SRM track each other closely below ~10 and
// diverge as the curve compresses darker beers.
func MoreySRM(mcu float64) float64 {
	if mcu <= 0 {
		return 0
	}
	return 1.4922 * math.Pow(mcu, 0.6859)
}

// EstimateSRM sums MCU over the fermentable lines and converts the total
// through MoreySRM. Hop and yeast lines contribute nothing.
func EstimateSRM(spec RecipeSpec, lines []Line) (float64, error) {
	batch, err := batchGallons(spec)
	if err != nil {
		return 0, err
	}

	var mcu float64
	for _, line := range lines {
		if line.Type != Grain && line.Type != Other {
			continue
		}
		if err := validateLine(line); err != nil {
			return 0, err
		}
		lb, err := massLb(line)
		if err != nil {
			return 0, err
		}
		m, err := MCU(lb, line.Lovibond, batch)
		if err != nil {
			return 0, err
		}
		mcu += m
	}
	return MoreySRM(mcu), nil
}

// ColorBand is one entry in the SRM display palette: the band covers
// [Min, Max) SRM.
type ColorBand struct {
	Name string
	Hex  string
	Min  float64
	Max  float64
}

// colorBands covers [0, +Inf) with contiguous, non-overlapping bands, in
// ascending order. Every SRM value maps to exactly one band.
var colorBands = []ColorBand{
	{"Pale Straw", "#FFE699", 0, 2},
	{"Straw", "#FFD878", 2, 3},
	{"Pale Gold", "#FFCA5A", 3, 4},
	{"Deep Gold", "#FFBF42", 4, 6},
	{"Pale Amber", "#F8A600", 6, 8},
	{"Medium Amber", "#E58500", 8, 10},
	{"Deep Amber", "#D77200", 10, 13},
	{"Amber Brown", "#BB5100", 13, 17},
	{"Brown", "#A13700", 17, 20},
	{"Ruby Brown", "#8E2900", 20, 24},
	{"Deep Brown", "#701400", 24, 29},
	{"Black Brown", "#600903", 29, 35},
	{"Black", "#3D0708", 35, 40},
	{"Opaque Black", "#240A03", 40, math.Inf(1)},
}

// ColorBands returns the full SRM palette in ascending order.
func ColorBands() []ColorBand {
	bands := make([]ColorBand, len(colorBands))
	copy(bands, colorBands)
	return bands
}

// SRMColor maps an SRM value to its display band. Negative input clamps to
// the palest band.
func SRMColor(srm float64) ColorBand {
	for _, band := range colorBands {
		if srm < band.Max {
			return band
		}
	}
	return colorBands[len(colorBands)-1]
}
