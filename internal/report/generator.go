// Package report orchestrates the generation pipeline: validate the
// request, merge brand data into the render context, render the DOCX, and
// optionally convert it to PDF. Each call is self-contained; a crash
// mid-pipeline leaves at most one stray document file.
package report

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/common/metrics"
	"client-report-engine/internal/common/observability"
	"client-report-engine/internal/models"
	"client-report-engine/internal/render"
)

// BrandResolver looks up brand records for the merge step.
type BrandResolver interface {
	Get(id string) (models.BrandRecord, error)
}

// DocumentRenderer renders a template against a context map.
type DocumentRenderer interface {
	Render(templateName string, context map[string]interface{}, outputName string) (string, error)
	TemplateExists(templateName string) bool
}

// PDFConverter turns a rendered document into a fixed-layout artifact.
type PDFConverter interface {
	Convert(ctx context.Context, inputPath, outputPath string) (string, error)
}

type Generator struct {
	brands    BrandResolver
	renderer  DocumentRenderer
	converter PDFConverter
	obs       *observability.Observability
	log       logger.Logger
	tracer    trace.Tracer
}

func NewGenerator(brands BrandResolver, renderer DocumentRenderer, converter PDFConverter, obs *observability.Observability, log logger.Logger) *Generator {
	return &Generator{
		brands:    brands,
		renderer:  renderer,
		converter: converter,
		obs:       obs,
		log:       log.WithFields(map[string]interface{}{"component": "generator"}),
		tracer:    otel.Tracer("client-report-engine/report"),
	}
}

// Generate runs the pipeline for one request. Validation failures surface
// before any output file is written. A conversion failure fails the call
// but leaves the rendered DOCX on disk as a usable partial result.
func (g *Generator) Generate(ctx context.Context, req *models.ReportRequest) (*models.GeneratedArtifacts, error) {
	ctx, span := g.tracer.Start(ctx, "report.generate",
		trace.WithAttributes(
			attribute.String("report.template", req.TemplateName),
			attribute.String("report.client_id", req.ClientID),
			attribute.Bool("report.generate_pdf", req.GeneratePDF),
		))
	defer span.End()

	start := time.Now()
	status := "success"
	defer func() {
		g.obs.RecordReportProcessed(ctx, status)
		g.obs.RecordReportDuration(ctx, time.Since(start), status)
	}()

	brand, err := g.validate(req)
	if err != nil {
		status = "error"
		metrics.ReportFailures.WithLabelValues("validate", string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	renderCtx := BuildContext(req, brand)
	outputName := req.OutputFilename
	if outputName == "" && req.ClientID != "" {
		outputName = render.UniqueName(models.NormalizeClientID(req.ClientID) + "_report")
	}

	renderStart := time.Now()
	docxPath, err := g.renderer.Render(req.TemplateName, renderCtx, outputName)
	metrics.ReportStageDuration.WithLabelValues("render").Observe(time.Since(renderStart).Seconds())
	if err != nil {
		status = "error"
		metrics.ReportFailures.WithLabelValues("render", string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	artifacts := &models.GeneratedArtifacts{
		ClientID:     models.NormalizeClientID(req.ClientID),
		DocxPath:     docxPath,
		TemplateUsed: req.TemplateName,
		GeneratedAt:  time.Now().UTC(),
	}

	if req.GeneratePDF {
		convertStart := time.Now()
		pdfPath, err := g.converter.Convert(ctx, docxPath, "")
		metrics.ReportStageDuration.WithLabelValues("convert").Observe(time.Since(convertStart).Seconds())
		if err != nil {
			status = "error"
			metrics.ReportFailures.WithLabelValues("convert", string(errors.CodeOf(err))).Inc()
			g.log.Error("conversion failed, rendered document retained", map[string]interface{}{
				"docxPath": docxPath,
				"error":    err.Error(),
			})
			return nil, err
		}
		artifacts.PDFPath = pdfPath
	}

	metrics.ReportsGenerated.WithLabelValues(req.TemplateName).Inc()
	g.log.Info("report generated", map[string]interface{}{
		"template": req.TemplateName,
		"clientId": req.ClientID,
		"docxPath": artifacts.DocxPath,
		"pdfPath":  artifacts.PDFPath,
	})
	return artifacts, nil
}

// validate fails fast before the filesystem is touched for output. An
// unknown client or template is the caller's fault, not a pipeline error.
func (g *Generator) validate(req *models.ReportRequest) (*models.BrandRecord, error) {
	if req.TemplateName == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"template_name is required", "")
	}
	if !g.renderer.TemplateExists(req.TemplateName) {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownTemplate,
			"unknown template", req.TemplateName)
	}

	if req.ClientID == "" {
		return nil, nil
	}

	brand, err := g.brands.Get(req.ClientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationError(errors.ErrCodeUnknownClient,
				"unknown client", fmt.Sprintf("client_id: %s", req.ClientID)).WithCause(err)
		}
		return nil, err
	}
	return &brand, nil
}
