package brewcalc

import (
	"fmt"
	"math"

	"github.com/zulandar/mashtun/internal/units"
)

// ceilEpsilon absorbs float error before rounding a scaled package count
// up, so scaling 1 pkg by exactly 2 gives 2 packages, not 3.
const ceilEpsilon = 1e-9

// Scale resizes a recipe to a new batch size, given in the recipe's own
// batch unit. Ingredient amounts scale linearly by newBatch/oldBatch; boil
// time and efficiency are process parameters and stay fixed, so the
// concentration metrics (OG, FG, IBU, SRM) of the scaled recipe match the
// original within float tolerance.
//
// Yeast lines measured in discrete packages round the scaled count up to a
// whole package — short-pitching is the one thing linear scaling must not
// do. All other lines keep fractional amounts.
//
// The returned spec and lines are a complete replacement; the inputs are
// never mutated. Persisting or discarding the result is the caller's call.
func Scale(spec RecipeSpec, lines []Line, newBatch float64) (RecipeSpec, []Line, error) {
	if newBatch <= 0 {
		return RecipeSpec{}, nil, fmt.Errorf("%w: %v", ErrInvalidScaleFactor, newBatch)
	}
	if err := validateSpec(spec); err != nil {
		return RecipeSpec{}, nil, err
	}

	factor := newBatch / spec.BatchSize

	scaled := make([]Line, len(lines))
	for i, line := range lines {
		if err := validateLine(line); err != nil {
			return RecipeSpec{}, nil, err
		}
		out := line
		if line.Type == Yeast && units.Kind(line.Unit) == units.KindCount {
			out.Amount = math.Ceil(line.Amount*factor - ceilEpsilon)
		} else {
			out.Amount = line.Amount * factor
		}
		scaled[i] = out
	}

	newSpec := spec
	newSpec.BatchSize = newBatch
	return newSpec, scaled, nil
}
