package engine

import "math"

// LogLikelihood reduces paired survival differences and observed deaths to a
// multinomial log-likelihood. An observed death in an interval with zero
// modeled probability yields -Inf.
func LogLikelihood(diffS []float64, deaths []int) float64 {
	if len(diffS) != len(deaths) {
		return math.NaN()
	}
	ll := 0.0
	for i, dy := range deaths {
		if dy <= 0 {
			continue
		}
		if diffS[i] == 0 {
			return math.Inf(-1)
		}
		ll += float64(dy) * math.Log(diffS[i])
	}
	return ll
}
