package usecase

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed extraction_defaults.yaml
var extractionDefaultsYAML []byte

type extractionDefaults struct {
	SystemModel         string   `yaml:"system_model"`
	RecoveryRate        float64  `yaml:"recovery_rate"`
	Stages              int      `yaml:"stages"`
	Membranes           string   `yaml:"membranes"`
	PreTreatment        []string `yaml:"pre_treatment"`
	DeliveryWeeks       int      `yaml:"delivery_weeks"`
	Warranty            string   `yaml:"warranty"`
	MaintenanceSchedule []string `yaml:"maintenance_schedule"`
}

var (
	reSystemModel  = regexp.MustCompile(`(?i)system\s+model\s*:?\s*([A-Za-z0-9][A-Za-z0-9 /._-]*)`)
	reRecoveryRate = regexp.MustCompile(`(?i)recovery\s+rate\s*:?\s*(\d+(?:\.\d+)?)\s*%?`)
	reStages       = regexp.MustCompile(`(?i)(\d+)\s*[- ]?stage|stages\s*:?\s*(\d+)`)
	reMembranes    = regexp.MustCompile(`(?i)membranes?\s*(?:type)?\s*:\s*([A-Za-z0-9][A-Za-z0-9 /._-]*)`)
	reDelivery     = regexp.MustCompile(`(?i)delivery\s*(?:time|period)?\s*:?\s*(\d+)\s*weeks?`)
	reWarranty     = regexp.MustCompile(`(?i)warranty\s*:?\s*([^\n.]+)`)
	reListItem     = regexp.MustCompile(`(?m)^\s*[-*\x{2022}]\s*(.+)$`)
)

func costPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) +
		`(?:\s+cost)?\s*:?\s*(?:USD|\$|EUR|\x{20AC})?\s*([\d,]+(?:\.\d+)?)`)
}

var (
	reEquipmentCost     = costPattern("equipment")
	reInstallationCost  = costPattern("installation")
	reCommissioningCost = costPattern("commissioning")
	reTotalCost         = costPattern("total")
)

// ProposalExtractor pulls structured quotation fields out of generated
// proposal text. Every extractor substitutes a default instead of failing:
// quotations must always come out complete.
type ProposalExtractor struct {
	defaults extractionDefaults
}

func NewProposalExtractor() (*ProposalExtractor, error) {
	var defaults extractionDefaults
	if err := yaml.Unmarshal(extractionDefaultsYAML, &defaults); err != nil {
		return nil, fmt.Errorf("parse extraction defaults: %w", err)
	}
	return &ProposalExtractor{defaults: defaults}, nil
}

func (e *ProposalExtractor) SystemModel(text string) string {
	if m := reSystemModel.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return e.defaults.SystemModel
}

func (e *ProposalExtractor) RecoveryRate(text string) float64 {
	if m := reRecoveryRate.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	return e.defaults.RecoveryRate
}

func (e *ProposalExtractor) Stages(text string) int {
	if m := reStages.FindStringSubmatch(text); m != nil {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if v, err := strconv.Atoi(group); err == nil {
				return v
			}
		}
	}
	return e.defaults.Stages
}

func (e *ProposalExtractor) Membranes(text string) string {
	if m := reMembranes.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return e.defaults.Membranes
}

// PreTreatment reads the bulleted list following a pre-treatment heading.
func (e *ProposalExtractor) PreTreatment(text string) []string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "pre-treatment")
	if idx < 0 {
		idx = strings.Index(lower, "pretreatment")
	}
	if idx < 0 {
		return append([]string(nil), e.defaults.PreTreatment...)
	}

	section := text[idx:]
	if end := strings.Index(section, "\n\n"); end > 0 {
		section = section[:end]
	}
	var items []string
	for _, m := range reListItem.FindAllStringSubmatch(section, -1) {
		item := strings.TrimSpace(m[1])
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return append([]string(nil), e.defaults.PreTreatment...)
	}
	return items
}

func (e *ProposalExtractor) EquipmentCost(text string) float64 {
	return extractCost(reEquipmentCost, text)
}

func (e *ProposalExtractor) InstallationCost(text string) float64 {
	return extractCost(reInstallationCost, text)
}

func (e *ProposalExtractor) CommissioningCost(text string) float64 {
	return extractCost(reCommissioningCost, text)
}

func (e *ProposalExtractor) TotalCost(text string) float64 {
	return extractCost(reTotalCost, text)
}

func (e *ProposalExtractor) DeliveryWeeks(text string) int {
	if m := reDelivery.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return e.defaults.DeliveryWeeks
}

func (e *ProposalExtractor) Warranty(text string) string {
	if m := reWarranty.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return e.defaults.Warranty
}

// MaintenanceSchedule reads the bulleted list following a maintenance heading.
func (e *ProposalExtractor) MaintenanceSchedule(text string) []string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "maintenance")
	if idx < 0 {
		return append([]string(nil), e.defaults.MaintenanceSchedule...)
	}

	section := text[idx:]
	if end := strings.Index(section, "\n\n"); end > 0 {
		section = section[:end]
	}
	var items []string
	for _, m := range reListItem.FindAllStringSubmatch(section, -1) {
		item := strings.TrimSpace(m[1])
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return append([]string(nil), e.defaults.MaintenanceSchedule...)
	}
	return items
}

// Missing costs default to zero so a quotation never invents a price.
func extractCost(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
