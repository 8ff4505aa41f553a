package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"gopkg.in/yaml.v3"
)

// LoadKeywordsFile overlays the phrase lists found in a YAML file onto base.
// Lists absent from the file keep their base value.
//
//	offensive_foul: ["offensive foul", "charge foul"]
//	violation: ["violation"]
//	non_turnover_violation: ["kicked ball"]
func LoadKeywordsFile(path string, base possession.Keywords) (possession.Keywords, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return possession.Keywords{}, fmt.Errorf("read POSSESSION_KEYWORDS_FILE: %w", err)
	}

	var file possession.Keywords
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return possession.Keywords{}, fmt.Errorf("parse POSSESSION_KEYWORDS_FILE %s: %w", path, err)
	}

	out := base
	if len(file.OffensiveFoul) > 0 {
		out.OffensiveFoul = file.OffensiveFoul
	}
	if len(file.Violation) > 0 {
		out.Violation = file.Violation
	}
	if file.NonTurnoverViolation != nil {
		out.NonTurnoverViolation = file.NonTurnoverViolation
	}
	return out, nil
}
