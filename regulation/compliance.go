package regulation

import (
	"fmt"
	"strings"
)

const complianceEpsilon = 1e-4

// Stair holds measured dimensions in meters. Landing is nil when the
// landing length was not measured.
type Stair struct {
	Riser   float64
	Tread   float64
	Landing *float64
}

// TwoRPlusG returns twice the riser plus the tread.
func (s Stair) TwoRPlusG() float64 {
	return 2*s.Riser + s.Tread
}

// Violation is one failed rule. Message is the rule's clause text when the
// configuration carries one.
type Violation struct {
	Rule     RuleKey
	Measured float64
	Message  string
}

// ComplianceResult is the outcome of checking one stair.
type ComplianceResult struct {
	Metrics    string
	Violations []Violation
	Notices    []string
}

// Compliant reports whether no rule was violated.
func (r ComplianceResult) Compliant() bool {
	return len(r.Violations) == 0
}

// FormatMillimeters renders a length in meters as rounded millimeters.
func FormatMillimeters(meters float64) string {
	return fmt.Sprintf("%d 毫米", int(meters*1000.0+0.5))
}

// Evaluate checks a measured stair against reg. Comparisons allow a
// tolerance of 0.1 mm.
func Evaluate(reg *StairRegulation, s Stair) ComplianceResult {
	var res ComplianceResult
	if reg == nil {
		res.Notices = append(res.Notices, "未加载有效规范配置")
		return res
	}

	metrics := []string{
		RiserHeight.Label() + " " + FormatMillimeters(s.Riser),
		TreadDepth.Label() + " " + FormatMillimeters(s.Tread),
		TwoRPlusG.Label() + " " + FormatMillimeters(s.TwoRPlusG()),
	}
	if s.Landing != nil {
		metrics = append(metrics, LandingLength.Label()+" "+FormatMillimeters(*s.Landing))
	}
	res.Metrics = strings.Join(metrics, "；")

	if r := reg.RiserHeight; r != nil && r.MaxValue != nil {
		if s.Riser-*r.MaxValue > complianceEpsilon {
			res.violate(RiserHeight, r, s.Riser, "超出上限 "+FormatMillimeters(*r.MaxValue))
		}
	}

	if r := reg.TreadDepth; r != nil && r.MinValue != nil {
		if s.Tread > complianceEpsilon {
			if *r.MinValue-s.Tread > complianceEpsilon {
				res.violate(TreadDepth, r, s.Tread, "低于下限 "+FormatMillimeters(*r.MinValue))
			}
		} else {
			res.Notices = append(res.Notices, "踏步宽度无效，未评估")
		}
	}

	if r := reg.TwoRPlusG; r != nil && r.MinValue != nil && r.MaxValue != nil {
		v := s.TwoRPlusG()
		switch {
		case v+complianceEpsilon < *r.MinValue:
			res.violate(TwoRPlusG, r, v, "低于下限 "+FormatMillimeters(*r.MinValue))
		case v-*r.MaxValue > complianceEpsilon:
			res.violate(TwoRPlusG, r, v, "超出上限 "+FormatMillimeters(*r.MaxValue))
		}
	}

	if r := reg.LandingLength; r != nil && r.MinValue != nil {
		if s.Landing != nil && *s.Landing > 0 {
			if *r.MinValue-*s.Landing > complianceEpsilon {
				res.violate(LandingLength, r, *s.Landing, "低于下限 "+FormatMillimeters(*r.MinValue))
			}
		} else {
			res.Notices = append(res.Notices, "平台长度未评估")
		}
	}
	return res
}

func (r *ComplianceResult) violate(key RuleKey, rule *RegulationRule, measured float64, detail string) {
	msg := rule.FullText
	if msg == "" {
		msg = fmt.Sprintf("%s %s %s", key.Label(), FormatMillimeters(measured), detail)
	}
	r.Violations = append(r.Violations, Violation{Rule: key, Measured: measured, Message: msg})
}
