package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dermacare/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByIdentifier — по email или user_name, без учёта регистра.
	GetByIdentifier(identifier string) (*models.User, error)
	ExistsByUserNameOrEmail(userName, email string) (bool, error)
	UpdatePassword(userID int, passwordHash string) error

	// verification
	MarkVerified(userID int, at time.Time) error

	// refresh helpers
	UpdateRefresh(userID int, token string) error
	// RotateRefresh — CAS по старому токену; nil, если старый токен
	// уже вытеснен или сброшен (logout).
	RotateRefresh(oldToken, newToken string) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, user_name, full_name, email, gender, password_hash,
	verified_at, is_active, refresh_token, created_at
`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		fullName   sql.NullString
		verifiedAt sql.NullTime
		refresh    sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.UserName, &fullName, &u.Email, &u.Gender, &u.PasswordHash,
		&verifiedAt, &u.IsActive, &refresh, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		u.FullName = fullName.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.VerifiedAt = &t
	}
	if refresh.Valid {
		s := refresh.String
		u.RefreshToken = &s
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (user_name, full_name, email, gender, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q,
		strings.ToLower(user.UserName),
		user.FullName,
		strings.ToLower(user.Email),
		user.Gender,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	user.IsActive = true
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.DB.QueryRow(q, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByIdentifier(identifier string) (*models.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1) OR LOWER(user_name) = LOWER($1)
	`
	u, err := scanUser(r.DB.QueryRow(q, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user by identifier: %w", err)
	}
	return u, nil
}

func (r *userRepository) ExistsByUserNameOrEmail(userName, email string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE LOWER(user_name) = LOWER($1) OR LOWER(email) = LOWER($2)
		)
	`
	var exists bool
	if err := r.DB.QueryRow(q, userName, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	if _, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID); err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	return nil
}

// ===== verification helpers =====

func (r *userRepository) MarkVerified(userID int, at time.Time) error {
	if _, err := r.DB.Exec(`UPDATE users SET verified_at=$1 WHERE id=$2 AND verified_at IS NULL`, at, userID); err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return nil
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(userID int, token string) error {
	if _, err := r.DB.Exec(`UPDATE users SET refresh_token=$1 WHERE id=$2`, token, userID); err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return nil
}

func (r *userRepository) RotateRefresh(oldToken, newToken string) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token=$1
		WHERE refresh_token=$2
		RETURNING ` + userColumns + `
	`
	u, err := scanUser(r.DB.QueryRow(q, newToken, oldToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) ClearRefresh(userID int) error {
	if _, err := r.DB.Exec(`UPDATE users SET refresh_token=NULL WHERE id=$1`, userID); err != nil {
		return fmt.Errorf("user clear refresh: %w", err)
	}
	return nil
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	u, err := scanUser(r.DB.QueryRow(q, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user by refresh token: %w", err)
	}
	return u, nil
}
