package extractor

import (
	"context"

	"github.com/BerylCAtieno/documind/internal/intake"
	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/utils"
)

// Strategy names the algorithm used to recover text from a document.
type Strategy string

const (
	StrategyTXT         Strategy = "txt"
	StrategyPDFLibrary  Strategy = "pdf_library"
	StrategyPDFFallback Strategy = "pdf_fallback"
)

type Extractor interface {
	Extract(ctx context.Context, doc *models.Document) (*models.ExtractedText, error)
}

type documentExtractor struct {
	pdfLibraryEnabled bool
	logger            *utils.Logger
}

// New returns the extractor used by the pipeline. When pdfLibraryEnabled is
// false PDFs go through the byte-scan fallback.
func New(pdfLibraryEnabled bool, logger *utils.Logger) Extractor {
	return &documentExtractor{
		pdfLibraryEnabled: pdfLibraryEnabled,
		logger:            logger,
	}
}

// SelectStrategy picks exactly one strategy for doc.
func SelectStrategy(doc *models.Document, pdfLibraryEnabled bool) (Strategy, error) {
	kind, ok := intake.KindOf(doc.Name)
	if !ok {
		return "", utils.NewValidationError("Please upload a PDF or TXT file only.")
	}

	switch kind {
	case intake.KindTXT:
		return StrategyTXT, nil
	case intake.KindPDF:
		if pdfLibraryEnabled {
			return StrategyPDFLibrary, nil
		}
		return StrategyPDFFallback, nil
	}

	return "", utils.NewValidationError("Please upload a PDF or TXT file only.")
}

func (e *documentExtractor) Extract(ctx context.Context, doc *models.Document) (*models.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.NewExtractionError("Error processing file", err)
	}

	strategy, err := SelectStrategy(doc, e.pdfLibraryEnabled)
	if err != nil {
		return nil, err
	}

	var text string
	switch strategy {
	case StrategyTXT:
		text, err = ExtractTXT(doc.RawBytes)
	case StrategyPDFLibrary:
		text, err = ExtractPDF(doc.RawBytes)
	case StrategyPDFFallback:
		e.logger.Warn("PDF library disabled, using fallback extraction", "filename", doc.Name)
		text, err = ExtractPDFFallback(doc.RawBytes)
	}

	if err != nil {
		e.logger.Error("Failed to extract text", "error", err, "strategy", strategy, "filename", doc.Name)
		return nil, err
	}

	e.logger.Info("Text extracted",
		"filename", doc.Name,
		"strategy", strategy,
		"text_length", runeLen(text))

	return &models.ExtractedText{
		Content:   text,
		CharCount: runeLen(text),
		Strategy:  string(strategy),
	}, nil
}
