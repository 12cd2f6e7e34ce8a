package schema

// MetricsFactor is one weighted feature of the safety score, for display purposes.
type MetricsFactor struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// MetricsRenderModel contains all processed data needed for displaying the scoring definitions.
type MetricsRenderModel struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Factors       []MetricsFactor `json:"factors"`
	ScoreFormula  string          `json:"score_formula"`
	WeightFormula string          `json:"weight_formula"`
	Alpha         float64         `json:"alpha"`
	Beta          float64         `json:"beta"`
	Adjacency     string          `json:"adjacency"`
}
