package service

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/export"
)

// ExportFormat selects the document type.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders a session's questions with their answer key.
type ExportService struct {
	sessions *SessionService
	fontPath string
	log      zerolog.Logger
	now      func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(sessions *SessionService, fontPath string, log zerolog.Logger) *ExportService {
	s := &ExportService{
		sessions: sessions,
		fontPath: fontPath,
		log:      log.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			s.log.Warn().Err(err).Str("font_path", fontPath).Msg("Export font not readable, using embedded font")
		}
	}
	return s
}

// Export renders the session in the requested format.
func (s *ExportService) Export(id uuid.UUID, format ExportFormat) (*ExportFile, error) {
	questions, topic, err := s.sessions.Questions(id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	now := s.now()
	doc := export.Document{Title: topic, Questions: questions, GeneratedAt: now}
	base := fmt.Sprintf("quiz-%s", now.Format("2006-01-02"))

	var file *ExportFile
	switch format {
	case FormatPDF:
		data, err := export.PDF(doc, export.PDFOptions{FontPath: s.fontPath})
		if err != nil {
			return nil, fmt.Errorf("export pdf: %w", err)
		}
		file = &ExportFile{Name: base + ".pdf", ContentType: "application/pdf", Data: data}
	case FormatXLSX:
		data, err := export.XLSX(doc)
		if err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
		file = &ExportFile{
			Name:        base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Str("format", string(format)).
		Int("questions", len(questions)).
		Int("bytes", len(file.Data)).
		Msg("Quiz exported")
	return file, nil
}
