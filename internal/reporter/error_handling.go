package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/internal/models"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with logging and typed errors
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Use one of the output formats: console, json, csv, xlsx")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely writes a run report and converts failures into
// ReconcilerErrors
func (srg *SafeReportGenerator) GenerateReportSafely(report *Report, writer io.Writer) error {
	if err := srg.validateWriter(writer); err != nil {
		return err
	}
	if report == nil {
		return errors.ValidationError(errors.CodeMissingField, "report", nil, nil).
			WithSuggestion("Provide a report to render")
	}

	srg.logger.WithFields(logger.Fields{
		"format":    srg.config.Format,
		"output":    getWriterDescription(writer),
		"results":   len(report.Results),
		"anomalies": len(report.Anomalies),
	}).Debug("Starting report generation")

	if err := srg.GenerateReport(report, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed")
		return srg.wrapGenerationError(err)
	}
	return nil
}

// ExportResultsSafely writes a results export and converts failures into
// ReconcilerErrors
func (srg *SafeReportGenerator) ExportResultsSafely(results []models.ReconciliationResult, writer io.Writer) error {
	if err := srg.validateWriter(writer); err != nil {
		return err
	}
	if !srg.config.Format.IsExport() {
		return errors.ValidationError(errors.CodeInvalidData, "format", string(srg.config.Format), nil).
			WithSuggestion("Export formats are csv, json and xlsx")
	}

	srg.logger.WithFields(logger.Fields{
		"format":  srg.config.Format,
		"output":  getWriterDescription(writer),
		"results": len(results),
	}).Debug("Exporting reconciliation results")

	if err := srg.ExportResults(results, writer); err != nil {
		srg.logger.WithError(err).Error("Results export failed")
		return srg.wrapGenerationError(err)
	}
	return nil
}

func (srg *SafeReportGenerator) validateWriter(writer io.Writer) error {
	if writer == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"writer",
			nil,
			nil,
		).WithSuggestion("Provide a valid output writer")
	}
	return nil
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return reconcilerErr
	}

	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, "report output", err).
			WithSuggestion("Check write permissions for the output destination")
	}

	return errors.InternalError(
		errors.CodeProcessingError,
		"report_generation",
		err,
	).WithSuggestion("Check the output destination and report format settings")
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
