package resultdb

import (
	"database/sql"
	"math"
)

// popStats derives the population mean and standard deviation from the SQL
// aggregates AVG(x) and AVG(x*x). Both are NaN for an empty set.
func popStats(mean, meanSq sql.NullFloat64) (float64, float64) {
	if !mean.Valid || !meanSq.Valid {
		return math.NaN(), math.NaN()
	}
	v := meanSq.Float64 - mean.Float64*mean.Float64
	if v < 0 {
		v = 0
	}
	return mean.Float64, math.Sqrt(v)
}
