package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/service"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/export"
)

type reportServiceMock struct {
	generateReq  dto.ReportRequest
	generateResp *dto.ReportResponse
	generateErr  error
	download     *service.ReportDownload
	downloadErr  error
}

func (m *reportServiceMock) Generate(ctx context.Context, userID string, req dto.ReportRequest) (*dto.ReportResponse, error) {
	m.generateReq = req
	return m.generateResp, m.generateErr
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerGenerate(t *testing.T) {
	mock := &reportServiceMock{generateResp: &dto.ReportResponse{Format: "csv", Token: "tok", URL: "/api/v1/reports/download/tok"}}
	handler := NewReportHandler(mock)
	c, w := newGinContext(http.MethodPost, "/reports/attendance", []byte(`{"format":"csv"}`))
	withUser(c, "user-1")

	handler.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "csv", mock.generateReq.Format)
	assert.Contains(t, w.Body.String(), "/api/v1/reports/download/tok")
}

func TestReportHandlerGenerateDisabled(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{generateErr: appErrors.ErrReportsDisabled})
	c, w := newGinContext(http.MethodPost, "/reports/attendance", []byte(`{"format":"pdf"}`))
	withUser(c, "user-1")

	handler.Generate(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReportHandlerDownloadStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	require.NoError(t, os.WriteFile(path, []byte("Subject,Name\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	mock := &reportServiceMock{download: &service.ReportDownload{
		File:      file,
		Filename:  "attendance.csv",
		Format:    export.FormatCSV,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	handler := NewReportHandler(mock)
	c, w := newGinContext(http.MethodGet, "/reports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance.csv")
	assert.Equal(t, "Subject,Name\n", w.Body.String())
}

func TestReportHandlerDownloadForbidden(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "download link expired")})
	c, w := newGinContext(http.MethodGet, "/reports/download/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
