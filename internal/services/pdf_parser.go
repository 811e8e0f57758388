package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

type PDFParserService interface {
	ExtractText(ctx context.Context, doc models.Document) (string, error)
}

type pdfParserService struct {
	storage StorageService
	logger  *zap.Logger
}

func NewPDFParserService(storage StorageService, log *zap.Logger) PDFParserService {
	return &pdfParserService{
		storage: storage,
		logger:  logger.OrNop(log),
	}
}

// ExtractText writes the document into a scratch directory, reads every
// page's plain text in order and removes the scratch directory again,
// whatever the outcome.
func (p *pdfParserService) ExtractText(ctx context.Context, doc models.Document) (text string, err error) {
	if len(doc.Content) == 0 {
		return "", apperrors.NewDocumentParseError(doc.Filename, errors.New("document is empty"))
	}

	tmp, err := p.storage.SaveTemp(doc.Filename, doc.Content)
	if err != nil {
		return "", fmt.Errorf("failed to stage document: %w", err)
	}
	defer func() {
		if cerr := tmp.Cleanup(); cerr != nil {
			p.logger.Warn("temp cleanup failed", zap.String("dir", tmp.Dir), zap.Error(cerr))
		}
	}()

	// The pdf reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = apperrors.NewDocumentParseError(doc.Filename, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	return p.readPages(ctx, doc.Filename, tmp.Path)
}

func (p *pdfParserService) readPages(ctx context.Context, filename, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperrors.NewDocumentParseError(filename, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("pdf extraction cancelled: %w", err)
		}

		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Debug("skipping unreadable page",
				zap.String("filename", filename),
				zap.Int("page", pageIndex),
				zap.Error(err),
			)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	p.logger.Debug("pdf text extracted",
		zap.String("filename", filename),
		zap.Int("pages", totalPage),
		zap.Int("chars", textBuilder.Len()),
	)

	return textBuilder.String(), nil
}
