package regulation

import "fmt"

type plausibleRange struct {
	lo, hi float64
}

func (r plausibleRange) contains(v float64) bool {
	return r.lo <= v && v <= r.hi
}

var (
	riserRange     = plausibleRange{0.10, 0.25}
	treadRange     = plausibleRange{0.20, 0.40}
	twoRPlusGRange = plausibleRange{0.50, 0.70}
)

// Validate returns advisory warnings for bounds outside plausible ranges.
// The record is never modified. A zero bound counts as unspecified.
func Validate(reg *StairRegulation) []string {
	if reg == nil {
		return nil
	}

	var warnings []string
	if v, ok := nonZero(reg.RiserHeight, maxBound); ok && !riserRange.contains(v) {
		warnings = append(warnings, fmt.Sprintf("踏步高度异常: %.3fm", v))
	}
	if v, ok := nonZero(reg.TreadDepth, minBound); ok && !treadRange.contains(v) {
		warnings = append(warnings, fmt.Sprintf("踏步宽度异常: %.3fm", v))
	}

	lo, okLo := nonZero(reg.TwoRPlusG, minBound)
	hi, okHi := nonZero(reg.TwoRPlusG, maxBound)
	if okLo && okHi {
		if !twoRPlusGRange.contains(lo) {
			warnings = append(warnings, fmt.Sprintf("2R+G最小值异常: %.3fm", lo))
		}
		if !twoRPlusGRange.contains(hi) {
			warnings = append(warnings, fmt.Sprintf("2R+G最大值异常: %.3fm", hi))
		}
	}
	return warnings
}

type bound int

const (
	minBound bound = iota
	maxBound
)

func nonZero(r *RegulationRule, b bound) (float64, bool) {
	if r == nil {
		return 0, false
	}
	p := r.MinValue
	if b == maxBound {
		p = r.MaxValue
	}
	if p == nil || *p == 0 {
		return 0, false
	}
	return *p, true
}
