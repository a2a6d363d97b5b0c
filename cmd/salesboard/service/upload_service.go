package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type UploadLogRepo interface {
	CreateUploadLog(ctx context.Context, fileName string, rowCount int, userID int64) error
	ListUploadLogs(ctx context.Context) ([]models.UploadLog, error)
}

type UploadService struct {
	LogRepo UploadLogRepo
	Dir     string
	Logger  *zap.Logger
}

func NewUploadService(repo UploadLogRepo, dir string, logger *zap.Logger) *UploadService {
	return &UploadService{LogRepo: repo, Dir: dir, Logger: logger}
}

// Upload stores the file under its base name, counts its data rows and records the upload.
// A file that fails to parse is removed again and no log entry is written.
func (s *UploadService) Upload(ctx context.Context, fileName string, content io.Reader, userID int64) (*models.UploadResponse, error) {
	name := filepath.Base(strings.TrimSpace(fileName))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, ErrNoFile
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return nil, ErrNotCSV
	}

	path := filepath.Join(s.Dir, name)
	if err := saveFile(path, content); err != nil {
		return nil, err
	}

	rows, err := countFileRows(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.Logger.Warn("failed to remove unparseable upload", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	if err := s.LogRepo.CreateUploadLog(ctx, name, rows, userID); err != nil {
		return nil, err
	}
	s.Logger.Info("csv uploaded", zap.String("file_name", name), zap.Int("row_count", rows), zap.Int64("user_id", userID))
	return &models.UploadResponse{
		Message:  "CSV uploaded successfully",
		FileName: name,
		RowCount: rows,
	}, nil
}

func (s *UploadService) ListLogs(ctx context.Context) ([]models.UploadLogResponse, error) {
	logs, err := s.LogRepo.ListUploadLogs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UploadLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, models.UploadLogResponse{
			FileName:   l.FileName,
			RowCount:   l.RowCount,
			User:       l.Username,
			UploadTime: l.UploadTime.UTC().Format(models.TimestampLayout),
		})
	}
	return out, nil
}

func saveFile(path string, content io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if _, err := io.Copy(f, content); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}

func countFileRows(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return CountCSVRows(f)
}

// CountCSVRows counts the records after the header. Records shorter than the header are
// counted as padded rows, records with extra fields are an error, and an input without a
// header is an error.
func CountCSVRows(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("no columns to parse from file")
		}
		return 0, err
	}
	width := len(header)

	rows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return 0, err
		}
		if len(record) > width {
			line, _ := cr.FieldPos(0)
			return 0, fmt.Errorf("expected %d fields in line %d, saw %d", width, line, len(record))
		}
		rows++
	}
}
