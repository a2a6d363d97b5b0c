package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type UploadLogRepoPG struct {
	db *sql.DB
}

func NewUploadLogRepoPG(db *sql.DB) *UploadLogRepoPG {
	return &UploadLogRepoPG{db: db}
}

func (r *UploadLogRepoPG) CreateUploadLog(ctx context.Context, fileName string, rowCount int, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO csv_upload_logs (file_name, row_count, user_id) VALUES ($1, $2, $3)`,
		fileName, rowCount, userID)
	if err != nil {
		return fmt.Errorf("create upload log: %w", err)
	}
	return nil
}

// ListUploadLogs returns every upload, newest first.
func (r *UploadLogRepoPG) ListUploadLogs(ctx context.Context) ([]models.UploadLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.file_name, l.row_count, l.user_id, u.username, l.upload_time
		 FROM csv_upload_logs l
		 JOIN users u ON u.id = l.user_id
		 ORDER BY l.upload_time DESC, l.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list upload logs: %w", err)
	}
	defer rows.Close()

	logs := []models.UploadLog{}
	for rows.Next() {
		var l models.UploadLog
		if err := rows.Scan(&l.ID, &l.FileName, &l.RowCount, &l.UserID, &l.Username, &l.UploadTime); err != nil {
			return nil, fmt.Errorf("scan upload log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
