// Package validation checks incoming request bodies against JSON schemas
// before they are decoded into typed structs.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"client-report-engine/internal/common/errors"
)

// reportRequestSchema constrains the report generation body. Field
// presence rules are intentionally loose (only template_name is required);
// enums catch the common typos in metric status and priority.
const reportRequestSchema = `{
  "type": "object",
  "required": ["template_name"],
  "properties": {
    "client_id": {"type": "string"},
    "template_name": {"type": "string", "minLength": 1},
    "report_date": {"type": "string"},
    "report_period": {"type": "string"},
    "prepared_by": {"type": "string"},
    "executive_summary": {"type": "string"},
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "value"],
        "properties": {
          "name": {"type": "string"},
          "value": {"type": "string"},
          "change": {"type": "string"},
          "status": {"type": "string", "enum": ["positive", "neutral", "negative"]}
        }
      }
    },
    "highlights": {"type": "array", "items": {"type": "string"}},
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "priority": {"type": "string", "enum": ["High", "Medium", "Low"]},
          "title": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "contact": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "title": {"type": "string"},
        "email": {"type": "string"},
        "phone": {"type": "string"}
      }
    },
    "extra_context": {"type": "object"},
    "generate_pdf": {"type": "boolean"},
    "output_filename": {"type": "string"}
  }
}`

// Compiled once so a malformed schema fails at startup, not per request.
var compiledReportSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(reportRequestSchema))
	if err != nil {
		panic(fmt.Sprintf("report request schema does not compile: %v", err))
	}
	return s
}()

// ValidateReportRequest checks a raw generate-report body against the
// schema and returns a validation error listing every violation.
func ValidateReportRequest(body []byte) error {
	result, err := compiledReportSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"request body is not valid JSON", err.Error()).WithCause(err)
	}

	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"request validation failed", strings.Join(msgs, "; "))
	}
	return nil
}
