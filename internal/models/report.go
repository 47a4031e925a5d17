package models

import "time"

// MetricItem is one row of the report's metrics table.
type MetricItem struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Change string `json:"change"`
	Status string `json:"status"` // positive, negative, neutral
}

// RecommendationItem is one entry of the report's recommendations section.
type RecommendationItem struct {
	Priority    string `json:"priority"` // High, Medium, Low
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContactInfo identifies who the client should reach out to.
type ContactInfo struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ReportRequest is the body of a report generation call. ClientID is
// optional; when absent no brand merge occurs.
type ReportRequest struct {
	ClientID     string `json:"client_id,omitempty"`
	TemplateName string `json:"template_name"`

	ReportDate       string `json:"report_date,omitempty"`
	ReportPeriod     string `json:"report_period,omitempty"`
	PreparedBy       string `json:"prepared_by,omitempty"`
	ExecutiveSummary string `json:"executive_summary,omitempty"`

	Metrics         []MetricItem         `json:"metrics,omitempty"`
	Highlights      []string             `json:"highlights,omitempty"`
	Recommendations []RecommendationItem `json:"recommendations,omitempty"`
	Contact         *ContactInfo         `json:"contact,omitempty"`

	// Extra context data merged last into the render context.
	ExtraContext map[string]interface{} `json:"extra_context,omitempty"`

	GeneratePDF    bool   `json:"generate_pdf,omitempty"`
	OutputFilename string `json:"output_filename,omitempty"`
}

// GeneratedArtifacts names the files a generation call produced. PDFPath is
// empty unless conversion was requested.
type GeneratedArtifacts struct {
	ClientID     string    `json:"client_id,omitempty"`
	DocxPath     string    `json:"docx_path"`
	PDFPath      string    `json:"pdf_path,omitempty"`
	TemplateUsed string    `json:"template_used"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ToContext converts a metric to the map shape templates iterate over.
func (m MetricItem) ToContext() map[string]interface{} {
	return map[string]interface{}{
		"name":   m.Name,
		"value":  m.Value,
		"change": m.Change,
		"status": m.Status,
	}
}

// ToContext converts a recommendation to the map shape templates iterate over.
func (r RecommendationItem) ToContext() map[string]interface{} {
	return map[string]interface{}{
		"priority":    r.Priority,
		"title":       r.Title,
		"description": r.Description,
	}
}

// ToContext converts contact info to the map shape templates read.
func (c ContactInfo) ToContext() map[string]interface{} {
	return map[string]interface{}{
		"name":  c.Name,
		"title": c.Title,
		"email": c.Email,
		"phone": c.Phone,
	}
}
