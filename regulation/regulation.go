// Package regulation holds the stair regulation record, the merge of model
// output with the regex fallback, plausibility checks and the compliance
// evaluation that consumes an emitted configuration.
package regulation

import "errors"

var (
	ErrInvalidResponse = errors.New("regulation: invalid model response")
	ErrNoRules         = errors.New("regulation: configuration has no usable rule")
)

const (
	// UnknownRegulationName is used when neither the model nor the text
	// sniffer found a title.
	UnknownRegulationName = "未知规范"

	// DefaultUnit is the unit every value is normalized to.
	DefaultUnit = "m"
)

// RuleKey names one of the four rule slots.
type RuleKey string

const (
	RiserHeight   RuleKey = "riser_height"
	TreadDepth    RuleKey = "tread_depth"
	TwoRPlusG     RuleKey = "two_r_plus_g"
	LandingLength RuleKey = "landing_length"
)

// RuleKeys lists the slots in record order.
func RuleKeys() []RuleKey {
	return []RuleKey{RiserHeight, TreadDepth, TwoRPlusG, LandingLength}
}

// Label returns the Chinese display name of the slot.
func (k RuleKey) Label() string {
	switch k {
	case RiserHeight:
		return "踏步高度"
	case TreadDepth:
		return "踏步宽度"
	case TwoRPlusG:
		return "2R+G"
	case LandingLength:
		return "平台长度"
	default:
		return string(k)
	}
}

// RegulationRule is one numeric constraint. A nil bound means the
// regulation does not specify it.
type RegulationRule struct {
	MinValue *float64 `json:"min_value"`
	MaxValue *float64 `json:"max_value"`
	Unit     string   `json:"unit"`
	Source   string   `json:"source"`
	FullText string   `json:"full_text"`
}

// HasValue reports whether either bound is set.
func (r *RegulationRule) HasValue() bool {
	return r != nil && (r.MinValue != nil || r.MaxValue != nil)
}

// StairRegulation is the record extracted from one regulation document.
// All four slots are always serialized, as null when absent.
type StairRegulation struct {
	RegulationName string          `json:"regulation_name"`
	RegulationCode string          `json:"regulation_code"`
	RiserHeight    *RegulationRule `json:"riser_height"`
	TreadDepth     *RegulationRule `json:"tread_depth"`
	TwoRPlusG      *RegulationRule `json:"two_r_plus_g"`
	LandingLength  *RegulationRule `json:"landing_length"`
}

// Rule returns the rule stored in slot k, or nil.
func (s *StairRegulation) Rule(k RuleKey) *RegulationRule {
	switch k {
	case RiserHeight:
		return s.RiserHeight
	case TreadDepth:
		return s.TreadDepth
	case TwoRPlusG:
		return s.TwoRPlusG
	case LandingLength:
		return s.LandingLength
	default:
		return nil
	}
}

// SetRule stores r in slot k.
func (s *StairRegulation) SetRule(k RuleKey, r *RegulationRule) {
	switch k {
	case RiserHeight:
		s.RiserHeight = r
	case TreadDepth:
		s.TreadDepth = r
	case TwoRPlusG:
		s.TwoRPlusG = r
	case LandingLength:
		s.LandingLength = r
	}
}

// NamedRule pairs a present rule with its slot.
type NamedRule struct {
	Key  RuleKey
	Rule *RegulationRule
}

// PresentRules returns the non-nil rules in record order.
func (s *StairRegulation) PresentRules() []NamedRule {
	var out []NamedRule
	for _, k := range RuleKeys() {
		if r := s.Rule(k); r != nil {
			out = append(out, NamedRule{Key: k, Rule: r})
		}
	}
	return out
}

// HasAnyValue reports whether at least one rule carries a bound.
func (s *StairRegulation) HasAnyValue() bool {
	for _, nr := range s.PresentRules() {
		if nr.Rule.HasValue() {
			return true
		}
	}
	return false
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
