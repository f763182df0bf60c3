package jobposting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS job_posting_requests (
	request_id        UUID PRIMARY KEY,
	title             TEXT NOT NULL,
	department        TEXT NOT NULL,
	division          TEXT NOT NULL,
	document_set_path TEXT,
	status            TEXT NOT NULL,
	error_code        TEXT,
	requested_by      TEXT,
	copied_files      INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL
)`

// AuditEntry is one provisioning attempt.
type AuditEntry struct {
	RequestID       uuid.UUID
	Title           string
	Department      string
	Division        string
	DocumentSetPath string
	Status          string
	ErrorCode       string
	RequestedBy     string
	CopiedFiles     int
	CreatedAt       time.Time
}

// AuditStore records provisioning attempts in Postgres.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (s *AuditStore) Record(ctx context.Context, e AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_posting_requests (
			request_id, title, department, division, document_set_path,
			status, error_code, requested_by, copied_files, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.RequestID.String(),
		e.Title,
		e.Department,
		e.Division,
		nullString(e.DocumentSetPath),
		e.Status,
		nullString(e.ErrorCode),
		nullString(e.RequestedBy),
		e.CopiedFiles,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
