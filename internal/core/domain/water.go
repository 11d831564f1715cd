package domain

import (
	"strings"
	"time"
)

const (
	AgeStatusCurrent   = "current"
	AgeStatusBudgetary = "budgetary"
)

// WaterParameters holds the measured values extracted from a lab report.
// Optional measurements are pointers so an absent value is distinguishable
// from a measured zero. Immutable within a single workflow run.
type WaterParameters struct {
	PH         float64  `json:"ph,omitempty"`
	TDS        float64  `json:"tds,omitempty"`
	Hardness   float64  `json:"hardness,omitempty"`
	Iron       float64  `json:"iron,omitempty"`
	Manganese  float64  `json:"manganese,omitempty"`
	Silica     *float64 `json:"silica,omitempty"`
	Turbidity  *float64 `json:"turbidity,omitempty"`
	Chlorides  *float64 `json:"chlorides,omitempty"`
	SampleDate string   `json:"sample_date,omitempty"`
}

// IsEmpty reports whether no measurement was extracted at all.
func (p WaterParameters) IsEmpty() bool {
	return p.PH == 0 && p.TDS == 0 && p.Hardness == 0 && p.Iron == 0 &&
		p.Manganese == 0 && p.Silica == nil && p.Turbidity == nil && p.Chlorides == nil
}

var sampleDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
}

// AgeStatus classifies the sample against the freshness window by parsing
// SampleDate. A report older than the window is budgetary rather than final.
// When the date does not parse, fallback (typically the model's own
// judgement) is returned.
func (p WaterParameters) AgeStatus(now time.Time, freshness time.Duration, fallback string) string {
	raw := strings.TrimSpace(p.SampleDate)
	if raw == "" {
		return normalizeAgeStatus(fallback)
	}
	for _, layout := range sampleDateLayouts {
		sampled, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if now.Sub(sampled) > freshness {
			return AgeStatusBudgetary
		}
		return AgeStatusCurrent
	}
	return normalizeAgeStatus(fallback)
}

func normalizeAgeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case AgeStatusBudgetary, "stale", "old":
		return AgeStatusBudgetary
	default:
		return AgeStatusCurrent
	}
}
