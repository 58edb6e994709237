// Package predictor implements the adaptive bit predictor used by the
// symbol-ranking stream encoder: a per-context 32-bit state that produces
// a 24-bit probability for the next bit and updates itself with a
// bounded-count learning rule.
package predictor

// State is a single context's predictor state packed into a uint32: the
// low 8 bits hold a saturating observation count in [0,255], the high 24
// bits hold the fixed-point probability of bit=1 in [0, 2^24).
type State uint32

// Initial is the value every context starts at: count=0, prediction=2^23
// (exactly 0.5).
const Initial State = 0x80000000

// mulTable is M[0..256): a fixed-point approximation of 1/(count+1),
// M[i] = round(2^32/(i+1)). The values at i=0 and i=255 are saturated to
// constants that don't follow the formula (2^32/1 doesn't fit a uint32,
// and the i=255 value is an empirical wire-format constant) — both are
// part of the on-wire format and must not be "corrected".
var mulTable [256]uint32

func init() {
	mulTable[0] = 0x80000000
	mulTable[255] = 0x00FF00FF
	for i := 1; i < 255; i++ {
		denom := uint64(i + 1)
		mulTable[i] = uint32((uint64(1)<<32 + denom/2) / denom)
	}
}

// Prediction returns the 24-bit probability of bit=1 currently held by s.
func (s State) Prediction() uint32 {
	return uint32(s) >> 8
}

// Count returns the saturating observation count currently held by s.
func (s State) Count() uint8 {
	return uint8(s)
}

// Update returns the prediction s held before this call, then adjusts s
// toward bit (0 or 1) using the count-scaled learning rate from mulTable
// and saturating-increments the count.
func (s *State) Update(bit int) uint32 {
	raw := uint32(*s)
	count := raw & 0xFF
	p := int64(raw >> 8)
	target := int64(bit) << 24
	delta := ((target - p) * int64(mulTable[count])) >> 24

	next := raw + (uint32(delta) & 0xFFFFFF00)
	if count < 255 {
		next++
	}
	*s = State(next)
	return raw >> 8
}

// Table is a flat array of predictor states, allocated once and indexed
// by a context id computed by the caller.
type Table []State

// NewTable allocates a table of n contexts, each at Initial.
func NewTable(n int) Table {
	t := make(Table, n)
	for i := range t {
		t[i] = Initial
	}
	return t
}
