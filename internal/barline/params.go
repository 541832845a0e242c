package barline

// Params holds the barline check thresholds in physical units: lengths as
// interline fractions, ratios dimensionless. Each band comes in a precise
// and a rough variant; the regime is picked when the Checker is built.
type Params struct {
	// Vertical distance band between a stick edge and the staff line.
	StaffShiftDyLow       float64 `json:"staff_shift_dy_low"`
	StaffShiftDyHigh      float64 `json:"staff_shift_dy_high"`
	StaffShiftDyLowRough  float64 `json:"staff_shift_dy_low_rough"`
	StaffShiftDyHighRough float64 `json:"staff_shift_dy_high_rough"`

	// Horizontal distance band between a stick and the staff edges.
	StaffDxLow       float64 `json:"staff_dx_low"`
	StaffDxHigh      float64 `json:"staff_dx_high"`
	StaffDxLowRough  float64 `json:"staff_dx_low_rough"`
	StaffDxHighRough float64 `json:"staff_dx_high_rough"`

	// Band for the difference between stick length and staff height.
	HeightDiffLow       float64 `json:"height_diff_low"`
	HeightDiffHigh      float64 `json:"height_diff_high"`
	HeightDiffLowRough  float64 `json:"height_diff_low_rough"`
	HeightDiffHighRough float64 `json:"height_diff_high_rough"`

	// Chunk window around stick corners and the alien-pixel ratio band.
	ChunkWidth      float64 `json:"chunk_width"`
	ChunkHalfHeight float64 `json:"chunk_half_height"`
	ChunkRatioLow   float64 `json:"chunk_ratio_low"`
	ChunkRatioHigh  float64 `json:"chunk_ratio_high"`

	// MaxThinWidth is the widest mean width of a thin barline, as an
	// interline fraction; wider sticks are thick barlines.
	MaxThinWidth float64 `json:"max_thin_width"`

	// MinSuiteGrade is the minimum weighted grade for acceptance.
	MinSuiteGrade float64 `json:"min_suite_grade"`
}

// DefaultParams returns the default barline check thresholds.
func DefaultParams() Params {
	return Params{
		StaffShiftDyLow:       0.27,
		StaffShiftDyHigh:      4.0,
		StaffShiftDyLowRough:  2.0,
		StaffShiftDyHighRough: 4.0,

		StaffDxLow:       0,
		StaffDxHigh:      0,
		StaffDxLowRough:  -4,
		StaffDxHighRough: -2,

		HeightDiffLow:       0.2,
		HeightDiffHigh:      0.4,
		HeightDiffLowRough:  0.5,
		HeightDiffHighRough: 1.0,

		ChunkWidth:      0.3,
		ChunkHalfHeight: 0.5,
		ChunkRatioLow:   1.0,
		ChunkRatioHigh:  1.8,

		MaxThinWidth:  0.3,
		MinSuiteGrade: 0.5,
	}
}
