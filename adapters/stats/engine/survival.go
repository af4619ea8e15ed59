package engine

import (
	"math"

	"guts/domain/guts"
)

// Survival holds normalized survival probabilities at the observation times and
// the paired differences consumed by the likelihood
type Survival struct {
	S     []float64
	DiffS []float64
}

// Integrate marches damage over steps uniform intervals spanning times and
// marginalizes survival over the threshold grid. times must start at 0 and be
// strictly increasing; the exposure must reach the last observation.
func Integrate(exposure guts.ExposureSeries, times []float64, w guts.WorkingParameters, grid *guts.ThresholdGrid, steps int) (*Survival, error) {
	n := grid.Len()
	t := len(times)
	if n == 0 || t == 0 || exposure.Len() < guts.MinSeriesLength || steps < guts.MinTimeResolution {
		return nil, guts.NewDiagnosticError(guts.CategorySurvival, guts.MsgSurvivalFailed)
	}
	if exposure.Horizon() < times[t-1] {
		return nil, guts.NewDiagnosticError(guts.CategorySurvival, guts.MsgExposureHorizon)
	}

	dtau := (times[t-1] - times[0]) / float64(steps)
	march := newDamageMarch(exposure, w.Kr, dtau, steps)
	cursor := newBucketCursor(grid.Z)

	out := &Survival{
		S:     make([]float64, t),
		DiffS: make([]float64, t),
	}

	var scale float64
	for i, ti := range times {
		for {
			d, ok := march.advance(ti)
			if !ok {
				break
			}
			cursor.add(d)
		}

		raw := cursor.survivalSum(w.Kk, dtau, grid.Weights) * (math.Exp(-w.Hb*ti) / float64(n))
		if i == 0 {
			if !(raw > 0) || math.IsInf(raw, 1) {
				return nil, guts.NewDiagnosticError(guts.CategorySurvival, guts.MsgZeroInitialSurvival)
			}
			scale = 1 / raw
			out.S[0] = 1
			continue
		}
		// S[i-1] is already scaled, raw is not
		out.DiffS[i-1] = out.S[i-1] - scale*raw
		out.S[i] = raw * scale
	}
	out.DiffS[t-1] = out.S[t-1]

	return out, nil
}
