// Package units provides shared constants and conversions for project length units
package units

import (
	"math"
	"slices"
	"strings"
)

// Unit constants
const (
	M  = "m"
	MM = "mm"
	CM = "cm"
	FT = "ft"
	IN = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, MM, CM, FT, IN}

// BaseTolerance is the default geometric tolerance expressed in metres.
const BaseTolerance = 1e-6

// DefaultDepthThresholdM is the cell edge length, in metres, below which the
// octree stops subdividing by default.
const DefaultDepthThresholdM = 0.2

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	return slices.Contains(ValidUnits, unit)
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// MetresPerUnit returns the length of one unit in metres. Unknown units are
// treated as metres.
func MetresPerUnit(unit string) float64 {
	switch unit {
	case MM:
		return 0.001
	case CM:
		return 0.01
	case FT:
		return 0.3048
	case IN:
		return 0.0254
	default:
		return 1
	}
}

// FromMetres converts a length in metres to the target unit.
func FromMetres(metres float64, unit string) float64 {
	return metres / MetresPerUnit(unit)
}

// ToMetres converts a length in unit to metres.
func ToMetres(length float64, unit string) float64 {
	return length * MetresPerUnit(unit)
}

// DefaultTolerance returns BaseTolerance expressed in unit, rounded to one
// significant digit so it maps onto a whole number of decimal places.
func DefaultTolerance(unit string) float64 {
	tol := FromMetres(BaseTolerance, unit)
	exp := math.Floor(math.Log10(tol) + 1e-9)
	return math.Pow(10, exp)
}

// DepthThreshold converts a threshold given in metres to unit.
func DepthThreshold(thresholdM float64, unit string) float64 {
	return FromMetres(thresholdM, unit)
}
