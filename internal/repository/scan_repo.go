package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status represents the state of an arbitrage scan request.
type Status string

// Status values for the scan lifecycle.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Scan represents a scan request record in the DB. Assets and Modes hold the
// canonical comma-joined request key, Result the JSON snapshot of the outcome.
type Scan struct {
	ID          string
	Assets      string
	Modes       string
	Status      Status
	Result      *string
	ErrorMsg    *string
	RequestedAt time.Time
	UpdatedAt   *time.Time
}

// ScanRepository defines DB operations for arbitrage scans.
type ScanRepository interface {
	CreateScan(ctx context.Context, assets, modes, id string) (string, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSuccess(ctx context.Context, id, result string) error
	MarkFailed(ctx context.Context, id, errorMsg string) error
	GetByID(ctx context.Context, id string) (*Scan, error)
	GetLatestSuccess(ctx context.Context) (*Scan, error)
}

// PostgresScanRepository is an implementation of ScanRepository using PostgreSQL.
type PostgresScanRepository struct {
	db *sql.DB
}

// NewPostgresScanRepository creates a new PostgresScanRepository.
func NewPostgresScanRepository(db *sql.DB) ScanRepository {
	return &PostgresScanRepository{db: db}
}

// CreateScan inserts a new scan request. If a scan for the same assets and
// modes is already pending/running, it returns the existing one's ID.
func (r *PostgresScanRepository) CreateScan(ctx context.Context, assets, modes, id string) (string, error) {
	query := `INSERT INTO scans (id, assets, modes, status, requested_at)
              VALUES ($1::uuid, $2, $3, 'PENDING'::scan_status, NOW())
              ON CONFLICT (assets, modes) WHERE status IN ('PENDING', 'RUNNING')
              DO UPDATE SET assets = scans.assets  -- no-op, changes nothing
              RETURNING id::text`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, assets, modes).Scan(&returnedID)
	if err != nil {
		return "", fmt.Errorf("failed to create scan: %w", err)
	}
	return returnedID, nil
}

// MarkRunning updates a scan record status to RUNNING.
func (r *PostgresScanRepository) MarkRunning(ctx context.Context, id string) error {
	// FAILED is accepted here so an asynq retry can restart the scan.
	query := `UPDATE scans
				SET status=$1::scan_status, updated_at=NOW()
				WHERE id=$2::uuid AND status IN ($3::scan_status, $4::scan_status)`
	return r.transition(ctx, id, "PENDING or FAILED", query,
		StatusRunning, id, StatusPending, StatusFailed)
}

// MarkSuccess updates the scan record to SUCCESS with the result snapshot.
func (r *PostgresScanRepository) MarkSuccess(ctx context.Context, id, result string) error {
	query := `UPDATE scans
				SET status=$1::scan_status,
				    result=$2::jsonb,
				    error=NULL,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status=$4::scan_status`
	return r.transition(ctx, id, "RUNNING", query,
		StatusSuccess, result, id, StatusRunning)
}

// MarkFailed updates the scan record to FAILED with an error message and NULL result.
func (r *PostgresScanRepository) MarkFailed(ctx context.Context, id, errorMsg string) error {
	query := `UPDATE scans
				SET status=$1::scan_status,
				    result=NULL,
				    error=$2,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status IN ($4::scan_status, $5::scan_status)`
	return r.transition(ctx, id, "PENDING or RUNNING", query,
		StatusFailed, errorMsg, id, StatusPending, StatusRunning)
}

// transition runs a status-guarded UPDATE. Matching zero rows means the scan
// either does not exist or is not in a status the transition accepts, and
// both cases fail the same way.
func (r *PostgresScanRepository) transition(ctx context.Context, id, accepted, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("scan %s absent or not in %s", id, accepted)
	}
	return nil
}

// GetByID retrieves a scan record by scan_id.
func (r *PostgresScanRepository) GetByID(ctx context.Context, id string) (*Scan, error) {
	query := `SELECT id::text, assets, modes, result::text, status, error, requested_at, updated_at
              FROM scans
              WHERE id=$1::uuid`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanRow(row)
}

// GetLatestSuccess finds the most recently completed successful scan.
func (r *PostgresScanRepository) GetLatestSuccess(ctx context.Context) (*Scan, error) {
	query := `SELECT id::text, assets, modes, result::text, status, error, requested_at, updated_at
              FROM scans
              WHERE status=$1::scan_status
              ORDER BY updated_at DESC
              LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, StatusSuccess)
	return scanRow(row)
}

// scanRow maps a single row into a Scan, returning (nil, nil) for sql.ErrNoRows.
func scanRow(row *sql.Row) (*Scan, error) {
	var s Scan
	var result sql.NullString
	var updatedAt sql.NullTime
	var errMsg sql.NullString
	var statusStr string

	err := row.Scan(&s.ID, &s.Assets, &s.Modes, &result, &statusStr, &errMsg, &s.RequestedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	s.Status = Status(statusStr)
	if result.Valid {
		s.Result = &result.String
	}
	if updatedAt.Valid {
		s.UpdatedAt = &updatedAt.Time
	}
	if errMsg.Valid {
		s.ErrorMsg = &errMsg.String
	}
	return &s, nil
}
