package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dermacare/internal/models"
)

type VerificationRepository interface {
	Create(v *models.VerificationOtp) (int64, error)
	// GetActive — единственная живая строка пары (user_id, purpose):
	// consumed_at IS NULL и срок не вышел. Протухшие отсекаются
	// прямо в запросе, фонового реапера для корректности не нужно.
	GetActive(userID int, purpose string, now time.Time) (*models.VerificationOtp, error)
	// IncrementAttempts — +1 попытка, только пока строка живая.
	// sql.ErrNoRows, если её успели consume-ить параллельно.
	IncrementAttempts(id int64) (int, error)
	// Consume — CAS: переводит строку в терминальное состояние.
	// false, если кто-то успел раньше.
	Consume(id int64, at time.Time) (bool, error)
	// ConsumeOpen — гасит все незакрытые строки пары, в том числе
	// протухшие без подтверждения. Вызывается перед созданием новой,
	// чтобы живая строка всегда была одна.
	ConsumeOpen(userID int, purpose string, at time.Time) error
}

type verificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) VerificationRepository {
	return &verificationRepository{DB: db}
}

func (r *verificationRepository) Create(v *models.VerificationOtp) (int64, error) {
	const q = `
		INSERT INTO user_verifications
			(user_id, purpose, code_hash, attempts, max_attempts, resent_count, sent_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	if err := r.DB.QueryRow(q,
		v.UserID, v.Purpose, v.CodeHash, v.Attempts, v.MaxAttempts, v.ResentCount, v.SentAt, v.ExpiresAt,
	).Scan(&v.ID); err != nil {
		return 0, fmt.Errorf("verification create: %w", err)
	}
	return v.ID, nil
}

func (r *verificationRepository) GetActive(userID int, purpose string, now time.Time) (*models.VerificationOtp, error) {
	const q = `
		SELECT id, user_id, purpose, code_hash, attempts, max_attempts, resent_count, sent_at, expires_at, consumed_at
		FROM user_verifications
		WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
		ORDER BY sent_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, userID, purpose, now)

	var v models.VerificationOtp
	var consumedAt sql.NullTime
	if err := row.Scan(
		&v.ID, &v.UserID, &v.Purpose, &v.CodeHash, &v.Attempts, &v.MaxAttempts,
		&v.ResentCount, &v.SentAt, &v.ExpiresAt, &consumedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("verification active: %w", err)
	}
	if consumedAt.Valid {
		t := consumedAt.Time
		v.ConsumedAt = &t
	}
	return &v, nil
}

func (r *verificationRepository) IncrementAttempts(id int64) (int, error) {
	const q = `
		UPDATE user_verifications
		SET attempts = attempts + 1
		WHERE id = $1 AND consumed_at IS NULL
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("verification increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *verificationRepository) Consume(id int64, at time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE user_verifications
		SET consumed_at = $1
		WHERE id = $2 AND consumed_at IS NULL
	`, at, id)
	if err != nil {
		return false, fmt.Errorf("verification consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verification consume rows: %w", err)
	}
	return n == 1, nil
}

func (r *verificationRepository) ConsumeOpen(userID int, purpose string, at time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE user_verifications
		SET consumed_at = $1
		WHERE user_id = $2 AND purpose = $3 AND consumed_at IS NULL
	`, at, userID, purpose)
	if err != nil {
		return fmt.Errorf("verification consume open: %w", err)
	}
	return nil
}
