package slur

// Params holds the curve repair thresholds in physical units; lengths are
// interline fractions, weights are interline-squared fractions. They are
// resolved to pixels once, when the Inspector is built.
type Params struct {
	// MaxCircleDistance is the maximum acceptable fit residual for a slur,
	// as an interline fraction.
	MaxCircleDistance float64 `json:"max_circle_distance"`

	// SpuriousWeight splits small (extend) from large (rebuild) repairs,
	// in interline-squared units of normalized weight.
	SpuriousWeight float64 `json:"spurious_weight"`

	// MinChunkWeight is the minimum section weight for seed selection,
	// in interline-squared units.
	MinChunkWeight float64 `json:"min_chunk_weight"`

	// BoxDx and BoxDy are the bounding-box growth margins used both by the
	// compound search scope and by isolation pruning, as interline
	// fractions.
	BoxDx float64 `json:"box_dx"`
	BoxDy float64 `json:"box_dy"`
}

// DefaultParams returns the default curve repair thresholds.
func DefaultParams() Params {
	return Params{
		MaxCircleDistance: 0.1,
		SpuriousWeight:    1.5,
		MinChunkWeight:    0.5,
		BoxDx:             0.7,
		BoxDy:             0.4,
	}
}
