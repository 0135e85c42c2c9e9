// Package units converts between the imperial and metric units the rest of
// the system stores and displays. Conversions use fixed factors and no
// intermediate rounding, so repeated round-trips do not drift; rounding
// happens once, at the storage or display boundary, via Round.
package units

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedUnit is returned when a unit tag is unknown or a conversion
// crosses kinds (e.g. mass to volume).
var ErrUnsupportedUnit = errors.New("units: unsupported unit")

// Unit identifies a measurement unit. The zero value is invalid.
type Unit string

// Supported unit tags. Pkg is a discrete count (yeast packages) and is not
// convertible to anything else.
const (
	Pound      Unit = "lb"
	Ounce      Unit = "oz"
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Gallon     Unit = "gal"
	Liter      Unit = "l"
	Fahrenheit Unit = "f"
	Celsius    Unit = "c"
	Package    Unit = "pkg"
)

// System identifies a display unit system. It is always passed explicitly;
// nothing in this package infers it from ambient state.
type System string

// Supported unit systems.
const (
	Imperial System = "imperial"
	Metric   System = "metric"
)

// UnitKind classifies a unit by what it measures.
type UnitKind int

// Unit kinds.
const (
	KindUnknown UnitKind = iota
	KindMass
	KindVolume
	KindTemperature
	KindCount
)

// Fixed conversion factors. Mass routes through grams and volume through
// liters so every pair shares a single factor per unit.
const (
	gramsPerPound  = 453.592
	gramsPerOunce  = gramsPerPound / 16
	gramsPerKilo   = 1000.0
	litersPerGal   = 3.78541
	ouncesPerPound = 16.0
)

// grams per unit of mass.
var massInGrams = map[Unit]float64{
	Pound:    gramsPerPound,
	Ounce:    gramsPerOunce,
	Kilogram: gramsPerKilo,
	Gram:     1,
}

// liters per unit of volume.
var volumeInLiters = map[Unit]float64{
	Gallon: litersPerGal,
	Liter:  1,
}

// Kind reports what a unit measures, or KindUnknown for unrecognized tags.
func Kind(u Unit) UnitKind {
	switch u {
	case Pound, Ounce, Kilogram, Gram:
		return KindMass
	case Gallon, Liter:
		return KindVolume
	case Fahrenheit, Celsius:
		return KindTemperature
	case Package:
		return KindCount
	}
	return KindUnknown
}

// Valid reports whether u is a recognized unit tag.
func Valid(u Unit) bool {
	return Kind(u) != KindUnknown
}

// Convert converts value from one unit to another of the same kind.
// Same-unit conversion is the identity. Count units, unknown tags, and
// cross-kind conversions return ErrUnsupportedUnit.
func Convert(value float64, from, to Unit) (float64, error) {
	if from == to && Valid(from) && Kind(from) != KindCount {
		return value, nil
	}

	fk, tk := Kind(from), Kind(to)
	if fk == KindUnknown {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, from)
	}
	if tk == KindUnknown {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, to)
	}
	if fk != tk || fk == KindCount {
		return 0, fmt.Errorf("%w: cannot convert %q to %q", ErrUnsupportedUnit, from, to)
	}

	switch fk {
	case KindMass:
		return value * massInGrams[from] / massInGrams[to], nil
	case KindVolume:
		return value * volumeInLiters[from] / volumeInLiters[to], nil
	case KindTemperature:
		return convertTemp(value, from, to), nil
	}
	return 0, fmt.Errorf("%w: cannot convert %q to %q", ErrUnsupportedUnit, from, to)
}

// convertTemp handles the one affine conversion: C = (F − 32) × 5/9.
func convertTemp(value float64, from, to Unit) float64 {
	if from == Fahrenheit && to == Celsius {
		return (value - 32) * 5 / 9
	}
	return value*9/5 + 32
}

// Round rounds v to the given number of decimal places. Callers use it only
// when writing to storage or formatting for display.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// MassUnit returns the default mass unit for a system (lb or kg).
func MassUnit(s System) Unit {
	if s == Metric {
		return Kilogram
	}
	return Pound
}

// HopMassUnit returns the default hop-addition mass unit (oz or g).
func HopMassUnit(s System) Unit {
	if s == Metric {
		return Gram
	}
	return Ounce
}

// VolumeUnit returns the default volume unit for a system (gal or L).
func VolumeUnit(s System) Unit {
	if s == Metric {
		return Liter
	}
	return Gallon
}

// TempUnit returns the default temperature unit for a system (°F or °C).
func TempUnit(s System) Unit {
	if s == Metric {
		return Celsius
	}
	return Fahrenheit
}

// ValidSystem reports whether s is a recognized unit system.
func ValidSystem(s System) bool {
	return s == Imperial || s == Metric
}
