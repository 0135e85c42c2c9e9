package brewcalc

// BalanceNotCalculated is the balance label for recipes with no measurable
// bitterness. A zero-IBU recipe has no meaningful ratio, which is different
// from a very malty one.
const BalanceNotCalculated = "Not calculated"

// BalanceRatio returns IBU divided by gravity points: ibu / ((og−1)×1000).
// A recipe with no gravity points and nonzero bitterness yields +Inf, which
// classifies as maximally hoppy.
func BalanceRatio(ibu, og float64) float64 {
	return ibu / ((og - 1) * 1000)
}

// ClassifyBalance labels the bitterness-to-gravity ratio on a fixed scale
// from Very Malty to Very Hoppy. Zero IBU returns BalanceNotCalculated.
func ClassifyBalance(ibu, og float64) string {
	if ibu == 0 {
		return BalanceNotCalculated
	}
	ratio := BalanceRatio(ibu, og)
	switch {
	case ratio < 0.3:
		return "Very Malty"
	case ratio < 0.6:
		return "Malty"
	case ratio < 0.8:
		return "Balanced (Malt)"
	case ratio < 1.2:
		return "Balanced"
	case ratio < 1.5:
		return "Balanced (Hoppy)"
	case ratio < 2.0:
		return "Hoppy"
	default:
		return "Very Hoppy"
	}
}
