package engine

import (
	"math"

	"guts/domain/guts"
)

// damageMarch steps the scaled internal damage over a uniform time grid using
// the closed-form solution of dD/dt = k_r (C(t) - D) on each linear exposure
// segment. The anchor is the damage at the last segment change.
type damageMarch struct {
	conc   []float64
	times  []float64
	slopes []float64
	kr     float64
	dtau   float64
	steps  int

	j      int
	k      int
	anchor float64
}

func newDamageMarch(exposure guts.ExposureSeries, kr, dtau float64, steps int) *damageMarch {
	n := exposure.Len()
	slopes := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		slopes[k] = (exposure.Concentration[k+1] - exposure.Concentration[k]) /
			(exposure.Time[k+1] - exposure.Time[k])
	}
	return &damageMarch{
		conc:   exposure.Concentration,
		times:  exposure.Time,
		slopes: slopes,
		kr:     kr,
		dtau:   dtau,
		steps:  steps,
	}
}

// tau is the internal time of the next step
func (d *damageMarch) tau() float64 {
	return d.dtau * float64(d.j)
}

// advance computes the damage at the next step if its time lies before limit
// and the step budget is not exhausted
func (d *damageMarch) advance(limit float64) (float64, bool) {
	if d.j >= d.steps {
		return 0, false
	}
	tau := d.tau()
	if !(tau < limit) {
		return 0, false
	}

	dmg := d.kernel(tau)
	d.j++

	next := d.tau()
	for d.k < len(d.slopes)-1 && next > d.times[d.k+1] {
		d.k++
		d.anchor = dmg
	}
	return dmg, true
}

func (d *damageMarch) kernel(tau float64) float64 {
	ck := d.conc[d.k]
	elapsed := tau - d.times[d.k]
	slope := d.slopes[d.k]

	switch {
	case d.kr == 0:
		return d.anchor
	case math.IsInf(d.kr, 1):
		return ck + elapsed*slope
	}
	x := d.kr * elapsed
	om := -math.Expm1(-x)
	return d.anchor + om*(ck-d.anchor) + lagTerm(x, om, elapsed, d.kr)*slope
}

// lagTerm returns elapsed - (1-exp(-kr*elapsed))/kr, with x = kr*elapsed and
// om = 1-exp(-x). Below seriesCutoff the difference cancels to nothing in
// floating point, so the Taylor series is used instead.
func lagTerm(x, om, elapsed, kr float64) float64 {
	if math.Abs(x) < seriesCutoff {
		return elapsed * x * (0.5 - x*(1.0/6-x/24))
	}
	return elapsed - om/kr
}

const seriesCutoff = 1e-5

// bucketCursor classifies damage values against the ascending threshold grid.
// pos only moves as far as needed to bracket the current value, so a slowly
// varying damage trajectory costs O(1) per step.
//
// Bucket u collects damage in (z[u], z[u+1]]; the last bucket collects
// everything above z[N-1]. ee sums the damage values, ff counts them.
type bucketCursor struct {
	z   []float64
	pos int
	ee  []float64
	ff  []float64
}

func newBucketCursor(z []float64) *bucketCursor {
	return &bucketCursor{
		z:  z,
		ee: make([]float64, len(z)),
		ff: make([]float64, len(z)),
	}
}

func (c *bucketCursor) add(d float64) {
	z := c.z
	last := len(z) - 1

	if d < z[c.pos] {
		for d < z[c.pos] && c.pos > 0 {
			c.pos--
		}
		if d > z[c.pos] {
			c.pos++
		}
	} else {
		for d > z[c.pos] && c.pos < last {
			c.pos++
		}
	}

	switch {
	case d > z[last]:
		c.ee[last] += d
		c.ff[last]++
	case d > z[0]:
		c.ee[c.pos-1] += d
		c.ff[c.pos-1]++
	}
}

// survivalSum walks the grid from the top, keeping suffix sums E and F that
// include bucket u in its own term. For threshold z[u], z[u]*F - E is the
// negated integral of the damage in excess of z[u] divided by dtau.
func (c *bucketCursor) survivalSum(kk, dtau float64, weights []float64) float64 {
	var e, f, sum float64
	for u := len(c.z) - 1; u >= 0; u-- {
		e += c.ee[u]
		f += c.ff[u]
		sum += math.Exp(killingExponent(kk, dtau, c.z[u]*f-e) + weights[u])
	}
	return sum
}

// killingExponent returns kk*dtau*x. When kk is the infinite-rate sentinel
// and kk*dtau overflows, the product is reassociated so that x == 0 yields 0.
// x is never positive in exact arithmetic, so rounding noise above 0 is dropped
// on that path instead of overflowing to +Inf.
func killingExponent(kk, dtau, x float64) float64 {
	rate := kk * dtau
	if math.IsInf(rate, 0) {
		if x >= 0 {
			return 0
		}
		return kk * (dtau * x)
	}
	return rate * x
}
