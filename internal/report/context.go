package report

import (
	"time"

	"client-report-engine/internal/models"
)

// BuildContext flattens a report request plus an optional brand record
// into the mapping handed to the renderer. Brand fields go in first and
// explicit request fields overlay them; extra_context overlays last, so
// the request always wins on key collision. The metrics, highlights, and
// recommendations keys are always present (possibly empty) so templates
// can iterate without guarding.
func BuildContext(req *models.ReportRequest, brand *models.BrandRecord) map[string]interface{} {
	ctx := make(map[string]interface{})

	if brand != nil {
		ctx["client_name"] = brand.DisplayName
		ctx["display_name"] = brand.DisplayName
		ctx["brand"] = brand.BrandContext()
	} else {
		ctx["brand"] = map[string]interface{}{}
	}

	if req.ClientID != "" {
		ctx["client_id"] = models.NormalizeClientID(req.ClientID)
	}

	reportDate := req.ReportDate
	if reportDate == "" {
		reportDate = time.Now().Format("January 2, 2006")
	}
	ctx["report_date"] = reportDate
	ctx["report_period"] = req.ReportPeriod
	ctx["prepared_by"] = req.PreparedBy
	ctx["executive_summary"] = req.ExecutiveSummary

	metrics := make([]map[string]interface{}, 0, len(req.Metrics))
	for _, m := range req.Metrics {
		metrics = append(metrics, m.ToContext())
	}
	ctx["metrics"] = metrics

	highlights := req.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	ctx["highlights"] = highlights

	recommendations := make([]map[string]interface{}, 0, len(req.Recommendations))
	for _, r := range req.Recommendations {
		recommendations = append(recommendations, r.ToContext())
	}
	ctx["recommendations"] = recommendations

	if req.Contact != nil {
		ctx["contact"] = req.Contact.ToContext()
	} else {
		ctx["contact"] = map[string]interface{}{}
	}

	for k, v := range req.ExtraContext {
		ctx[k] = v
	}

	return ctx
}
