package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type uploadLogEntry struct {
	fileName string
	rowCount int
	userID   int64
}

type memUploadLogRepo struct {
	entries []uploadLogEntry
	logs    []models.UploadLog
	err     error
}

func (r *memUploadLogRepo) CreateUploadLog(_ context.Context, fileName string, rowCount int, userID int64) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, uploadLogEntry{fileName, rowCount, userID})
	return nil
}

func (r *memUploadLogRepo) ListUploadLogs(context.Context) ([]models.UploadLog, error) {
	return r.logs, r.err
}

func TestCountCSVRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{"rows", "a,b\n1,2\n3,4\n", 2, ""},
		{"header only", "a,b\n", 0, ""},
		{"no trailing newline", "a,b\n1,2", 1, ""},
		{"empty", "", 0, "no columns to parse from file"},
		{"extra fields", "a,b\n1,2\n1,2,3\n", 0, "expected 2 fields in line 3, saw 3"},
		{"short rows padded", "a,b,c\n1,2,3\n4\n5,6\n", 3, ""},
		{"blank lines skipped", "a,b\n1,2\n\n3,4\n", 2, ""},
		{"bad quote", "a,b\n\"1,2\n", 0, "extraneous or missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountCSVRows(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestUploadStoresFileAndLogs(t *testing.T) {
	dir := t.TempDir()
	repo := &memUploadLogRepo{}
	svc := NewUploadService(repo, filepath.Join(dir, "uploads"), zaptest.NewLogger(t))

	resp, err := svc.Upload(context.Background(), "../../report.csv", strings.NewReader("a,b\n1,2\n3,4\n"), 42)
	require.NoError(t, err)
	assert.Equal(t, &models.UploadResponse{Message: "CSV uploaded successfully", FileName: "report.csv", RowCount: 2}, resp)
	assert.Equal(t, []uploadLogEntry{{"report.csv", 2, 42}}, repo.entries)

	saved, err := os.ReadFile(filepath.Join(dir, "uploads", "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(saved))
}

func TestUploadRejectsNonCSV(t *testing.T) {
	dir := t.TempDir()
	repo := &memUploadLogRepo{}
	svc := NewUploadService(repo, dir, zaptest.NewLogger(t))

	_, err := svc.Upload(context.Background(), "report.xlsx", strings.NewReader("a,b\n"), 1)
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.Empty(t, repo.entries)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUploadAcceptsUpperCaseExtension(t *testing.T) {
	repo := &memUploadLogRepo{}
	svc := NewUploadService(repo, t.TempDir(), zaptest.NewLogger(t))

	resp, err := svc.Upload(context.Background(), "REPORT.CSV", strings.NewReader("a\n1\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RowCount)
}

func TestUploadMalformedCSVLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	repo := &memUploadLogRepo{}
	svc := NewUploadService(repo, dir, zaptest.NewLogger(t))

	_, err := svc.Upload(context.Background(), "broken.csv", strings.NewReader("a,b\n1,2,3\n"), 1)
	require.ErrorIs(t, err, ErrInvalidCSV)
	assert.True(t, strings.HasPrefix(err.Error(), "error parsing CSV: "))
	assert.Empty(t, repo.entries)
	assert.NoFileExists(t, filepath.Join(dir, "broken.csv"))

	_, err = svc.Upload(context.Background(), "empty.csv", strings.NewReader(""), 1)
	require.ErrorIs(t, err, ErrInvalidCSV)
	assert.Contains(t, err.Error(), "no columns to parse from file")
}

func TestUploadMissingName(t *testing.T) {
	svc := NewUploadService(&memUploadLogRepo{}, t.TempDir(), zaptest.NewLogger(t))

	_, err := svc.Upload(context.Background(), "", strings.NewReader("a\n"), 1)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestUploadLogFailureIsReturned(t *testing.T) {
	repo := &memUploadLogRepo{err: errors.New("db down")}
	svc := NewUploadService(repo, t.TempDir(), zaptest.NewLogger(t))

	_, err := svc.Upload(context.Background(), "ok.csv", strings.NewReader("a\n1\n"), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCSV)
}

func TestListLogsFormatsUploadTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	repo := &memUploadLogRepo{logs: []models.UploadLog{{
		FileName:   "report.csv",
		RowCount:   128975,
		Username:   "alice",
		UploadTime: time.Date(2024, 1, 2, 8, 30, 15, 0, loc),
	}}}
	svc := NewUploadService(repo, t.TempDir(), zaptest.NewLogger(t))

	got, err := svc.ListLogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UploadLogResponse{{
		FileName: "report.csv", RowCount: 128975, User: "alice", UploadTime: "2024-01-02 03:00:15",
	}}, got)
}
