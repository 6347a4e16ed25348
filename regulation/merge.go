package regulation

// MergeString returns the first non-empty of model and fallback, else def.
func MergeString(model, fallback, def string) string {
	if model != "" {
		return model
	}
	if fallback != "" {
		return fallback
	}
	return def
}

// Merge builds the final record. Name and code prefer the model, then the
// sniffed fallback. A rule slot is filled only when the model returned a
// non-empty object for it.
func Merge(resp *Response, fb Fallback) StairRegulation {
	if resp == nil {
		resp = &Response{}
	}

	reg := StairRegulation{
		RegulationName: MergeString(resp.RegulationName, fb.Name, UnknownRegulationName),
		RegulationCode: MergeString(resp.RegulationCode, fb.Code, ""),
	}
	for _, key := range RuleKeys() {
		if rr, ok := resp.Rules[key]; ok && rr != nil {
			reg.SetRule(key, buildRule(rr))
		}
	}
	return reg
}

// buildRule maps a model rule onto the record. A missing unit defaults to
// meters while an explicit null becomes empty, so every text member is
// always present in the output.
func buildRule(rr *RuleResponse) *RegulationRule {
	rule := &RegulationRule{
		Unit:     textField(rr.Unit, DefaultUnit),
		Source:   textField(rr.Source, ""),
		FullText: textField(rr.FullText, ""),
	}
	if rr.MinValue.Set() {
		rule.MinValue = Float(float64(rr.MinValue.Value))
	}
	if rr.MaxValue.Set() {
		rule.MaxValue = Float(float64(rr.MaxValue.Value))
	}
	return rule
}

func textField(f Field[string], absent string) string {
	switch {
	case !f.Present:
		return absent
	case f.Null:
		return ""
	default:
		return f.Value
	}
}
