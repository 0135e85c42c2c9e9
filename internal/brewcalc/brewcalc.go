// Package brewcalc computes brewing metrics (OG, FG, ABV, IBU, SRM) and
// scales recipes. Every function is pure and synchronous: inputs in, numbers
// out, no storage access and no internal state. All callers — CLI, API, the
// recipe snapshot writer — go through Compute, so there is exactly one
// formula set in the system.
//
// Formulas operate internally in imperial reference units (pounds, ounces,
// gallons) because gravity potential (ppg) and the Tinseth constants are
// defined in them. Metric inputs are converted at entry via the units
// package; nothing here rounds, that happens at the storage boundary.
package brewcalc

import (
	"errors"
	"fmt"

	"github.com/zulandar/mashtun/internal/units"
)

// Sentinel errors for invalid engine inputs. Callers match with errors.Is.
var (
	ErrInvalidAmount      = errors.New("brewcalc: ingredient amount must not be negative")
	ErrInvalidBatchSize   = errors.New("brewcalc: batch size must be positive")
	ErrInvalidScaleFactor = errors.New("brewcalc: target batch size must be positive")
	ErrUnrecognizedType   = errors.New("brewcalc: unrecognized ingredient type")
)

// IngredientType classifies an ingredient line.
type IngredientType string

// Recognized ingredient types. Anything else fails ErrUnrecognizedType —
// unknown types are never silently dropped from a calculation.
const (
	Grain IngredientType = "grain"
	Hop   IngredientType = "hop"
	Yeast IngredientType = "yeast"
	Other IngredientType = "other"
)

// ValidType reports whether t is a recognized ingredient type.
func ValidType(t IngredientType) bool {
	switch t {
	case Grain, Hop, Yeast, Other:
		return true
	}
	return false
}

// HopUse identifies when a hop addition happens. Empty defaults to boil.
type HopUse string

// Hop addition stages.
const (
	UseBoil      HopUse = "boil"
	UseWhirlpool HopUse = "whirlpool"
	UseDryHop    HopUse = "dry-hop"
)

// TimeUnit qualifies a hop addition time.
type TimeUnit string

// Hop time units: boil and whirlpool additions are in minutes, dry hops
// in days.
const (
	Minutes TimeUnit = "min"
	Days    TimeUnit = "day"
)

// Line is one resolved recipe ingredient: the stored amount plus the
// type-specific attributes looked up from the ingredient catalog. Fields
// that don't apply to the line's type are left zero.
type Line struct {
	Type   IngredientType
	Name   string // for error context only
	Amount float64
	Unit   units.Unit

	// Fermentables (grain, other).
	Potential float64 // gravity points per pound per gallon (ppg)
	Lovibond  float64 // color contribution, °L

	// Hops.
	AlphaAcid float64 // percent
	Use       HopUse
	Time      float64
	TimeUnit  TimeUnit

	// Yeast.
	Attenuation float64 // apparent attenuation percent; 0 means unknown
}

// RecipeSpec is the recipe-level input to every calculation.
type RecipeSpec struct {
	BatchSize  float64
	BatchUnit  units.Unit
	BoilTime   float64 // minutes
	Efficiency float64 // mash efficiency percent, (0, 100]
}

// Metrics is the complete computed record for a recipe. Compute returns it
// whole or not at all — a partial record is never produced. Estimated is
// set when FG and ABV fell back to DefaultAttenuation because no yeast line
// carried attenuation data.
type Metrics struct {
	OG        float64
	FG        float64
	ABV       float64
	IBU       float64
	SRM       float64
	Estimated bool
}

// batchGallons validates and converts the batch size to gallons.
func batchGallons(spec RecipeSpec) (float64, error) {
	if spec.BatchSize <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBatchSize, spec.BatchSize)
	}
	gal, err := units.Convert(spec.BatchSize, spec.BatchUnit, units.Gallon)
	if err != nil {
		return 0, fmt.Errorf("brewcalc: batch size: %w", err)
	}
	return gal, nil
}

// massLb converts a line's amount to pounds.
func massLb(line Line) (float64, error) {
	lb, err := units.Convert(line.Amount, line.Unit, units.Pound)
	if err != nil {
		return 0, fmt.Errorf("brewcalc: %s: %w", line.Name, err)
	}
	return lb, nil
}

// massOz converts a line's amount to ounces.
func massOz(line Line) (float64, error) {
	oz, err := units.Convert(line.Amount, line.Unit, units.Ounce)
	if err != nil {
		return 0, fmt.Errorf("brewcalc: %s: %w", line.Name, err)
	}
	return oz, nil
}

// validateLine checks the type- and amount-level invariants shared by every
// calculation. Unit fitness (mass vs. count) is checked where the amount is
// actually converted.
func validateLine(line Line) error {
	if !ValidType(line.Type) {
		return fmt.Errorf("%w: %q (%s)", ErrUnrecognizedType, line.Type, line.Name)
	}
	if line.Amount < 0 {
		return fmt.Errorf("%w: %s has amount %v", ErrInvalidAmount, line.Name, line.Amount)
	}
	return nil
}

// validateSpec checks the recipe-level inputs common to every calculation.
func validateSpec(spec RecipeSpec) error {
	if spec.BatchSize <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBatchSize, spec.BatchSize)
	}
	if units.Kind(spec.BatchUnit) != units.KindVolume {
		return fmt.Errorf("brewcalc: batch unit: %w: %q", units.ErrUnsupportedUnit, spec.BatchUnit)
	}
	if spec.BoilTime < 0 {
		return fmt.Errorf("brewcalc: boil time must not be negative: %v", spec.BoilTime)
	}
	if spec.Efficiency <= 0 || spec.Efficiency > 100 {
		return fmt.Errorf("brewcalc: efficiency must be in (0, 100]: %v", spec.Efficiency)
	}
	return nil
}

// Compute runs the full pipeline and returns the complete metrics record
// for a recipe: OG, then FG (weighted yeast attenuation or the documented
// default), ABV, IBU, and SRM. All inputs are validated up front so a bad
// line fails the whole computation instead of producing a partial record.
func Compute(spec RecipeSpec, lines []Line) (Metrics, error) {
	if err := validateSpec(spec); err != nil {
		return Metrics{}, err
	}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return Metrics{}, err
		}
	}

	og, err := EstimateOG(spec, lines)
	if err != nil {
		return Metrics{}, err
	}

	att, known := WeightedAttenuation(lines)
	if !known {
		att = DefaultAttenuation
	}
	fg := EstimateFG(og, att)

	ibu, err := TotalIBU(spec, lines, og)
	if err != nil {
		return Metrics{}, err
	}

	srm, err := EstimateSRM(spec, lines)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		OG:        og,
		FG:        fg,
		ABV:       ABV(og, fg),
		IBU:       ibu,
		SRM:       srm,
		Estimated: !known,
	}, nil
}
