package linear

// Line is y = Intercept + Slope*x.
type Line struct {
	Slope     float64
	Intercept float64
}

func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// FitTrend fits an ordinary least-squares line through values indexed 0..n-1.
// A single value yields a flat line; no values yield the zero line.
func FitTrend(values []float64) Line {
	n := float64(len(values))
	switch len(values) {
	case 0:
		return Line{}
	case 1:
		return Line{Intercept: values[0]}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Line{Intercept: sumY / n}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return Line{Slope: slope, Intercept: (sumY - slope*sumX) / n}
}
