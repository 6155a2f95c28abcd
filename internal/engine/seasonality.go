package engine

const (
	swimwearCurve = "Swimwear"
	catchAllCurve = "Total ex. Swimwear"

	// defaultOrderPercentage spreads annual volume uniformly across the
	// year when a curve point is missing (≈1.923% per week).
	defaultOrderPercentage = 100.0 / 52.0
)

type curveKey struct {
	curve   string
	isoWeek int
}

// SeasonalityModel answers what fraction of a merchant's annual volume
// is expected in a given ISO week, per vertical curve.
type SeasonalityModel struct {
	points map[curveKey]float64
}

// NewSeasonalityModel indexes curve points for lookup. Later duplicates
// of the same (vertical, week) win, matching replace-wholesale ingestion.
func NewSeasonalityModel(points []CurvePoint) *SeasonalityModel {
	m := &SeasonalityModel{points: make(map[curveKey]float64, len(points))}
	for _, p := range points {
		m.points[curveKey{curve: p.Vertical, isoWeek: p.ISOWeek}] = p.OrderPercentage
	}
	return m
}

// ResolveCurveName maps a merchant vertical to its curve: Swimwear has a
// dedicated curve, every other vertical shares the catch-all.
func ResolveCurveName(vertical string) string {
	if vertical == swimwearCurve {
		return swimwearCurve
	}
	return catchAllCurve
}

// OrderPercentage returns the expected share of annual volume for the
// week, falling back to the uniform default when the point is absent.
func (m *SeasonalityModel) OrderPercentage(vertical string, isoWeek int) float64 {
	if m == nil || len(m.points) == 0 {
		return defaultOrderPercentage
	}
	if pct, ok := m.points[curveKey{curve: ResolveCurveName(vertical), isoWeek: isoWeek}]; ok {
		return pct
	}
	return defaultOrderPercentage
}

// ExpectedWeeklyOrders converts annual volume into the expected order
// count for one ISO week.
func (m *SeasonalityModel) ExpectedWeeklyOrders(annualVolume float64, vertical string, isoWeek int) float64 {
	return annualVolume * m.OrderPercentage(vertical, isoWeek) / 100
}

// WindowSharePercent sums the weekly percentages over the trailing
// window (through-window, through]. Weeks outside the curve, including
// non-positive ones near the year start, contribute the default.
func (m *SeasonalityModel) WindowSharePercent(vertical string, throughISOWeek, windowSize int) float64 {
	if windowSize <= 0 {
		windowSize = DefaultTrailingWindow
	}
	var share float64
	for week := throughISOWeek - windowSize + 1; week <= throughISOWeek; week++ {
		share += m.OrderPercentage(vertical, week)
	}
	return share
}
