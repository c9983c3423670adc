package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/export"
	"github.com/noah-isme/attendance-api/pkg/storage"
)

type reportStats interface {
	Stats(ctx context.Context, userID string, asOf time.Time) (*StatsResult, error)
	SafeMargins(ctx context.Context, userID string, asOf time.Time) ([]attendance.SafeMargin, error)
	Today() time.Time
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

// ReportServiceConfig governs download links and cleanup.
type ReportServiceConfig struct {
	Enabled         bool
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    export.Format
	ExpiresAt time.Time
}

// ReportService renders attendance reports and hands out signed download links.
type ReportService struct {
	stats     reportStats
	storage   fileStorage
	signer    tokenSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(stats reportStats, store fileStorage, signer tokenSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		stats:     stats,
		storage:   store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Generate renders the user's attendance report and stores it.
func (s *ReportService) Generate(ctx context.Context, userID string, req dto.ReportRequest) (*dto.ReportResponse, error) {
	if !s.cfg.Enabled || s.storage == nil || s.signer == nil {
		return nil, appErrors.ErrReportsDisabled
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	format := export.Format(req.Format)
	asOf := s.stats.Today()
	if req.AsOf != "" {
		parsed, err := attendance.ParseDate("as_of", req.AsOf)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		asOf = parsed
	}

	result, err := s.stats.Stats(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	margins, err := s.stats.SafeMargins(ctx, userID, asOf)
	if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) || appErr.Status >= 500 {
			return nil, err
		}
		margins = nil
	}

	payload, err := export.Render(format, BuildAttendanceDataset(result.Report, margins))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	filename := fmt.Sprintf("attendance-%s-%d.%s", attendance.FormatDate(asOf), s.now().UnixNano(), format)
	relPath, err := s.storage.Save(filepath.Join(userID, filename), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	token, expiresAt, err := s.signer.Generate(userID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	s.logger.Info("attendance report generated", zap.String("user_id", userID), zap.String("format", string(format)), zap.Int("bytes", len(payload)))
	return &dto.ReportResponse{
		Format:    string(format),
		Filename:  filename,
		Token:     token,
		URL:       s.cfg.APIPrefix + "/reports/download/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	if !s.cfg.Enabled || s.storage == nil || s.signer == nil {
		return nil, appErrors.ErrReportsDisabled
	}
	_, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}
	format := export.FormatCSV
	if filepath.Ext(relPath) == ".pdf" {
		format = export.FormatPDF
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    format,
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if !s.cfg.Enabled || s.storage == nil || s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired()
			}
		}
	}()
}

func (s *ReportService) cleanupExpired() {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Sugar().Warnw("report cleanup failed", "error", err)
		return
	}
	if len(removed) > 0 {
		s.logger.Sugar().Infow("expired reports removed", "count", len(removed))
	}
}
