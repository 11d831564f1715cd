package domain

// QuotationRequest describes the water analysis and sizing requirements a
// quotation is generated for.
type QuotationRequest struct {
	WaterAnalysis WaterParameters `json:"water_analysis"`
	Capacity      float64         `json:"capacity"`
	Pressure      float64         `json:"pressure"`
	ClientName    string          `json:"client_name,omitempty"`
	Location      string          `json:"location,omitempty"`
	Industry      string          `json:"industry,omitempty"`
}

type SystemDesignSummary struct {
	Model        string   `json:"model"`
	Capacity     float64  `json:"capacity"`
	Pressure     float64  `json:"pressure"`
	RecoveryRate float64  `json:"recovery_rate"`
	Stages       int      `json:"stages"`
	Membranes    string   `json:"membranes"`
	PreTreatment []string `json:"pre_treatment"`
}

type PriceBreakdown struct {
	Equipment     float64 `json:"equipment"`
	Installation  float64 `json:"installation"`
	Commissioning float64 `json:"commissioning"`
	Total         float64 `json:"total"`
}

type Quotation struct {
	SystemDesign        SystemDesignSummary `json:"system_design"`
	PriceBreakdown      PriceBreakdown      `json:"price_breakdown"`
	DeliveryWeeks       int                 `json:"delivery_weeks"`
	Warranty            string              `json:"warranty"`
	MaintenanceSchedule []string            `json:"maintenance_schedule"`
}
