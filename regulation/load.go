package regulation

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	loadedDefaultName = "已提取规范"
	loadedDefaultCode = "从PDF提取"
)

// LoadConfig reads an emitted configuration file. It fails with ErrNoRules
// when no rule carries a bound, and fills in display defaults for an empty
// name or code.
func LoadConfig(path string) (*StairRegulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regulation: read config: %w", err)
	}

	var reg StairRegulation
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("regulation: decode config %s: %w", path, err)
	}
	if !reg.HasAnyValue() {
		return nil, fmt.Errorf("%w: %s", ErrNoRules, path)
	}

	if reg.RegulationName == "" {
		reg.RegulationName = loadedDefaultName
	}
	if reg.RegulationCode == "" {
		reg.RegulationCode = loadedDefaultCode
	}
	return &reg, nil
}
