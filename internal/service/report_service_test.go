package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/export"
	"github.com/noah-isme/attendance-api/pkg/storage"
)

func newReportFixture(t *testing.T, enabled bool) (*ReportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	stats := newStatsFixture(mondaySnapshot()).svc
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewReportService(stats, store, signer, validator.New(), zap.NewNop(), ReportServiceConfig{
		Enabled:   enabled,
		APIPrefix: "/api/v1",
	})
	return svc, store
}

func TestReportServiceGenerateAndDownloadCSV(t *testing.T) {
	svc, _ := newReportFixture(t, true)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, "u1", dto.ReportRequest{Format: "csv", AsOf: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.Format)
	assert.Contains(t, resp.Filename, "attendance-2024-01-15-")
	assert.Equal(t, "/api/v1/reports/download/"+resp.Token, resp.URL)

	download, err := svc.ResolveDownload(ctx, resp.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, export.FormatCSV, download.Format)
	assert.Equal(t, resp.Filename, download.Filename)

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "MA101")
	assert.Contains(t, string(body), "Overall: 100% (safe)")
}

func TestReportServiceGeneratePDF(t *testing.T) {
	svc, _ := newReportFixture(t, true)

	resp, err := svc.Generate(context.Background(), "u1", dto.ReportRequest{Format: "pdf", AsOf: "2024-01-15"})
	require.NoError(t, err)

	download, err := svc.ResolveDownload(context.Background(), resp.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, export.FormatPDF, download.Format)

	head := make([]byte, 4)
	_, err = io.ReadFull(download.File, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestReportServiceRejectsBadRequests(t *testing.T) {
	svc, _ := newReportFixture(t, true)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "u1", dto.ReportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ResolveDownload(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	disabled, _ := newReportFixture(t, false)
	_, err = disabled.Generate(ctx, "u1", dto.ReportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrReportsDisabled)
}

func TestBuildAttendanceDataset(t *testing.T) {
	engine, err := attendance.New(mondaySnapshot())
	require.NoError(t, err)
	report, err := engine.Stats(day(2024, 1, 15))
	require.NoError(t, err)
	margins, err := engine.SafeMargins(day(2024, 1, 15))
	require.NoError(t, err)

	data := BuildAttendanceDataset(report, margins)
	require.Len(t, data.Rows, 1)
	row := data.Rows[0]
	assert.Equal(t, "MA101", row["Subject"])
	assert.Equal(t, "3", row["Held"])
	assert.Equal(t, "100%", row["Percentage"])
	assert.Equal(t, "2", row["Can Skip"])
	assert.Equal(t, "4", row["Credits"])

	withoutMargins := BuildAttendanceDataset(report, nil)
	assert.Equal(t, "-", withoutMargins.Rows[0]["Must Attend"])
}
