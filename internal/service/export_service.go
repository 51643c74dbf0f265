package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/pkg/export"
	"github.com/yardimli/learn-with-ai-sub000/pkg/storage"
)

type planDetailReader interface {
	Get(ctx context.Context, id string) (*dto.CalendarPlanDetail, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderSheets(title string, sheets []export.Sheet) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

var calendarExportHeaders = []string{"Year", "Month", "Week", "Day", "Slot", "Kind", "Lesson", "Category", "Detail"}

// ExportService renders stored calendar plans and persists the files.
type ExportService struct {
	plans   planDetailReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(plans planDetailReader, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		plans:   plans,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the job's plan in the requested format and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	plan, _, err := s.plans.Get(ctx, job.PlanID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s v%d", plan.Name, plan.Version)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(combinedDataset(plan, job.Params.IncludeEmpty))
	case models.ExportFormatPDF:
		payload, err = s.pdf.RenderSheets(title, monthSheets(plan, job.Params.IncludeEmpty))
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(plan, job.Params.Format), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("calendar export rendered",
		zap.String("job_id", job.ID),
		zap.String("plan_id", plan.ID),
		zap.String("format", string(job.Params.Format)),
		zap.Int("bytes", len(payload)),
	)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(plan *dto.CalendarPlanDetail, format models.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("calendar_%s_v%d_%s.%s", sanitizeFilename(strings.ToLower(plan.Name)), plan.Version, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := []rune(replacer.Replace(raw))
	if len(result) > 100 {
		result = result[:100]
	}
	return string(result)
}

func combinedDataset(plan *dto.CalendarPlanDetail, includeEmpty bool) export.Dataset {
	dataset := export.Dataset{Headers: calendarExportHeaders, Rows: []map[string]string{}}
	for _, month := range plan.Grid {
		dataset.Rows = append(dataset.Rows, monthRows(month, plan.Categories, includeEmpty)...)
	}
	return dataset
}

// monthSheets yields one sheet per month; months with no rows still get a
// sheet so the PDF mirrors the plan's range.
func monthSheets(plan *dto.CalendarPlanDetail, includeEmpty bool) []export.Sheet {
	sheets := make([]export.Sheet, 0, len(plan.Grid))
	for _, month := range plan.Grid {
		sheets = append(sheets, export.Sheet{
			Title: month.Label,
			Data: export.Dataset{
				Headers: calendarExportHeaders,
				Rows:    monthRows(month, plan.Categories, includeEmpty),
			},
		})
	}
	return sheets
}

func monthRows(month dto.CalendarMonth, categories map[string]string, includeEmpty bool) []map[string]string {
	rows := []map[string]string{}
	for _, week := range month.Weeks {
		for _, day := range week.Days {
			for _, slot := range day.Slots {
				content := slot.Content
				if content.Kind == string(calendar.KindEmpty) && !includeEmpty {
					continue
				}
				row := map[string]string{
					"Year":  strconv.Itoa(month.Year),
					"Month": strconv.Itoa(month.Month),
					"Week":  strconv.Itoa(week.Week),
					"Day":   day.Day,
					"Slot":  slot.TimeSlot,
					"Kind":  content.Kind,
				}
				switch content.Kind {
				case string(calendar.KindLesson):
					if content.Lesson != nil {
						row["Lesson"] = content.Lesson.Title
						if row["Lesson"] == "" {
							row["Lesson"] = content.Lesson.ID
						}
						row["Category"] = categoryLabel(categories, content.Lesson.CategoryID)
					}
					if content.Fallback {
						row["Detail"] = fmt.Sprintf("reused from week %d", content.SourceWeek)
					}
				case string(calendar.KindSpecialActivity):
					row["Detail"] = content.Activity
				case string(calendar.KindMissing):
					row["Category"] = categoryLabel(categories, content.CategoryID)
					row["Detail"] = content.Reason
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func categoryLabel(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
