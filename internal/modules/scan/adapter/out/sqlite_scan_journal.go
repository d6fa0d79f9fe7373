package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"daing/internal/modules/scan/domain"
	scanout "daing/internal/modules/scan/port/out"

	_ "modernc.org/sqlite"
)

// createdAtLayout is fixed width so text order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteScanJournal struct {
	db *sql.DB
}

func NewSQLiteScanJournal(dbPath string) (scanout.ScanJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	journal := &SQLiteScanJournal{db: db}
	if err := journal.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (s *SQLiteScanJournal) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS scans (
  id TEXT PRIMARY KEY,
  image_path TEXT NOT NULL,
  endpoint TEXT NOT NULL,
  attempts INTEGER NOT NULL,
  is_daing INTEGER NOT NULL,
  fish_type TEXT,
  confidence REAL NOT NULL,
  grade TEXT,
  saved_to_dataset INTEGER NOT NULL,
  error_kind TEXT,
  error_message TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS scans_created_at ON scans(created_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create scans table: %w", err)
	}
	return nil
}

func (s *SQLiteScanJournal) Append(ctx context.Context, record domain.ScanRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	const stmt = `
INSERT INTO scans (id, image_path, endpoint, attempts, is_daing, fish_type, confidence, grade, saved_to_dataset, error_kind, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		record.ID,
		record.ImagePath,
		record.Endpoint,
		record.Attempts,
		boolToInt(record.IsDaing),
		string(record.FishType),
		record.Confidence,
		record.Grade,
		boolToInt(record.SavedToDataset),
		record.ErrorKind,
		record.ErrorMessage,
		record.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (s *SQLiteScanJournal) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	const query = `
SELECT id, image_path, endpoint, attempts, is_daing, fish_type, confidence, grade, saved_to_dataset, error_kind, error_message, created_at
FROM scans
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScanRecord, 0, limit)
	for rows.Next() {
		var (
			record                  domain.ScanRecord
			isDaing, savedToDataset int
			fishType, createdAt     string
			grade, kind, message    sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.ImagePath, &record.Endpoint, &record.Attempts, &isDaing, &fishType,
			&record.Confidence, &grade, &savedToDataset, &kind, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		record.IsDaing = isDaing != 0
		record.SavedToDataset = savedToDataset != 0
		record.FishType = domain.FishType(fishType)
		record.Grade = grade.String
		record.ErrorKind = kind.String
		record.ErrorMessage = message.String
		record.CreatedAt, _ = time.Parse(createdAtLayout, createdAt)
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}
	return out, nil
}

func (s *SQLiteScanJournal) Close() error {
	return s.db.Close()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
