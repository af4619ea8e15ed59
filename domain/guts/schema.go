package guts

import "math"

// Slot names one of the five working parameters
type Slot int

const (
	SlotHb Slot = iota
	SlotKr
	SlotKk
	SlotM
	SlotSD
)

var slotNames = [...]string{"h_b", "k_r", "k_k", "m", "sd"}

// String returns the conventional parameter name
func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return "unknown"
	}
	return slotNames[s]
}

// Schema lists which working parameters a user vector supplies, in order
type Schema struct {
	Distribution      Distribution
	Submodel          Submodel
	Slots             []Slot
	KillingRatePinned bool
}

type schemaKey struct {
	dist Distribution
	sub  Submodel
}

var schemaTable = map[schemaKey][]Slot{
	{Lognormal, StochasticDeath}:     {SlotHb, SlotKr, SlotKk, SlotM, SlotSD},
	{Lognormal, IndividualTolerance}: {SlotHb, SlotKr, SlotM, SlotSD},
	{PointMass, StochasticDeath}:     {SlotHb, SlotKr, SlotKk, SlotM},
	{PointMass, IndividualTolerance}: {SlotHb, SlotKr, SlotM},
	{Empirical, StochasticDeath}:     {SlotHb, SlotKr, SlotKk},
	{Empirical, IndividualTolerance}: {SlotHb, SlotKr},
}

// SchemaFor returns the active-parameter schema of a distribution and submodel
func SchemaFor(dist Distribution, sub Submodel) Schema {
	slots := schemaTable[schemaKey{dist, sub}]
	out := make([]Slot, len(slots))
	copy(out, slots)
	return Schema{
		Distribution:      dist,
		Submodel:          sub,
		Slots:             out,
		KillingRatePinned: sub == IndividualTolerance,
	}
}

// Len returns the required parameter vector length
func (s Schema) Len() int { return len(s.Slots) }

// Names returns the parameter names in vector order
func (s Schema) Names() []string {
	names := make([]string, len(s.Slots))
	for i, slot := range s.Slots {
		names[i] = slot.String()
	}
	return names
}

// Resolve maps a user vector onto the working parameters. Unmapped slots stay
// at 0, except the killing rate which stays infinite. The vector length must
// match Len.
func (s Schema) Resolve(par []float64) WorkingParameters {
	w := WorkingParameters{Kk: InfiniteRate}
	for i, slot := range s.Slots {
		if i >= len(par) {
			break
		}
		switch slot {
		case SlotHb:
			w.Hb = par[i]
		case SlotKr:
			w.Kr = par[i]
		case SlotKk:
			w.Kk = par[i]
		case SlotM:
			w.M = par[i]
		case SlotSD:
			w.SD = par[i]
		}
	}
	if math.IsInf(w.Kk, 1) {
		w.Kk = InfiniteRate
	}
	return w
}
