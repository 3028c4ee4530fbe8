package gaze

import "math"

// Default geometry used when a configuration names none.
const (
	DefaultEyeRadius       = 125
	DefaultIrisRadius      = 60
	DefaultSlitPupilRadius = 0
	DefaultCoverage        = 0.6
)

// Geometry is the set of values that size the precomputed polar lookup
// tables. Changing any of them means regenerating the tables, which only
// happens at boot.
type Geometry struct {
	EyeRadius       int
	IrisRadius      int
	SlitPupilRadius int
	EyeDiameter     int
	MapRadius       int
	MapDiameter     int
	Coverage        float32
}

// DefaultGeometry returns the geometry for a configuration that sets
// nothing.
func DefaultGeometry() Geometry {
	return NewGeometry(DefaultEyeRadius, DefaultIrisRadius, DefaultSlitPupilRadius, DefaultCoverage)
}

// NewGeometry derives the diameters and map radius from the configured
// radii and coverage.
func NewGeometry(eyeRadius, irisRadius, slitPupilRadius int, coverage float32) Geometry {
	mapRadius := int(math.Round(float64(eyeRadius) * float64(coverage) * math.Pi / 2))
	return Geometry{
		EyeRadius:       eyeRadius,
		IrisRadius:      irisRadius,
		SlitPupilRadius: slitPupilRadius,
		EyeDiameter:     eyeRadius * 2,
		MapRadius:       mapRadius,
		MapDiameter:     mapRadius * 2,
		Coverage:        coverage,
	}
}

// GeometryInvariant freezes the boot geometry across in-place reloads.
// A configuration that specifies different values is not an error; the
// values are simply overwritten.
type GeometryInvariant struct {
	saved Geometry
}

// Snapshot captures the live geometry before a reload begins.
func (g *GeometryInvariant) Snapshot(live *Geometry) {
	g.saved = *live
}

// Restore overwrites the live geometry with the snapshot.
func (g *GeometryInvariant) Restore(live *Geometry) {
	*live = g.saved
}
