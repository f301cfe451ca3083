package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/repository"
)

const passwordResetsTable = "password_resets"

// PasswordResetRepository implements port.PasswordResetRepository using PostgreSQL.
type PasswordResetRepository struct {
	db      DB
	builder squirrel.StatementBuilderType
}

// NewPasswordResetRepository wires a PostgreSQL-backed reset ledger.
func NewPasswordResetRepository(db DB) *PasswordResetRepository {
	return &PasswordResetRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Replace deletes any request belonging to req.UserID and inserts req. Both statements
// run in one transaction holding a per-user advisory lock, so concurrent replacements
// for the same user serialise.
func (r *PasswordResetRepository) Replace(ctx context.Context, req domain.PasswordResetRequest) error {
	deleteSQL, deleteArgs, err := r.builder.Delete(passwordResetsTable).
		Where(squirrel.Eq{"user_id": req.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete password reset sql: %w", err)
	}

	insertSQL, insertArgs, err := r.builder.Insert(passwordResetsTable).
		Columns("id", "user_id", "otp_hash", "expires_at", "used_at", "created_at").
		Values(req.ID, req.UserID, req.OTPHash, req.ExpiresAt, nil, req.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password reset sql: %w", err)
	}

	return inTx(ctx, r.db, func(ctx context.Context, exec pgExecutor) error {
		if _, err := exec.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", req.UserID); err != nil {
			return fmt.Errorf("lock password reset: %w", err)
		}
		if _, err := exec.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
			return fmt.Errorf("delete password reset: %w", err)
		}
		if _, err := exec.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert password reset: %w", mapWriteError(err))
		}
		return nil
	})
}

// GetByUserID returns the newest request for userID.
func (r *PasswordResetRepository) GetByUserID(ctx context.Context, userID string) (*domain.PasswordResetRequest, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "otp_hash", "expires_at", "used_at", "created_at").
		From(passwordResetsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select password reset sql: %w", err)
	}

	var req domain.PasswordResetRequest
	if err := executorFor(ctx, r.db).QueryRow(ctx, stmt, args...).Scan(
		&req.ID,
		&req.UserID,
		&req.OTPHash,
		&req.ExpiresAt,
		&req.UsedAt,
		&req.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select password reset: %w", err)
	}

	return &req, nil
}

// MarkUsed consumes an unconsumed request.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	stmt, args, err := r.builder.Update(passwordResetsTable).
		Set("used_at", usedAt).
		Where(squirrel.Eq{"id": id, "used_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume password reset sql: %w", err)
	}

	tag, err := executorFor(ctx, r.db).Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume password reset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a request by id. Deleting a missing request is not an error.
func (r *PasswordResetRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete(passwordResetsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete password reset sql: %w", err)
	}

	if _, err := executorFor(ctx, r.db).Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete password reset: %w", err)
	}
	return nil
}

var _ port.PasswordResetRepository = (*PasswordResetRepository)(nil)
