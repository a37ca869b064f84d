package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mkheight/hostel-backend/internal/models"
)

const accountColumns = `id, name, email, phone, password_hash, google_id, role, is_active,
		       last_login_at, created_at, updated_at`

const insertAccountQuery = `
		INSERT INTO accounts (id, name, email, phone, password_hash, google_id, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

// AccountRepository handles account database operations
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByID retrieves an account by ID. Returns nil if not found.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by case-insensitive email. Returns nil if not found.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`

	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

// GetByGoogleID retrieves an account linked to a Google subject. Returns nil if not found.
func (r *AccountRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE google_id = $1`

	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, googleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by google id: %w", err)
	}
	return &account, nil
}

// List returns accounts matching the filter, newest first
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	var args []interface{}

	if filter.Role != "" {
		args = append(args, string(filter.Role))
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Create inserts a new account. Returns ErrDuplicate if the email is taken.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return insertAccount(ctx, r.db, account)
}

func insertAccount(ctx context.Context, q sqlx.QueryerContext, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))

	err := q.QueryRowxContext(ctx, insertAccountQuery,
		account.ID, account.Name, account.Email, account.Phone, account.PasswordHash,
		account.GoogleID, string(account.Role), account.IsActive,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", mapError(err))
	}
	return nil
}

// Update saves profile, role and status fields
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, email = $3, phone = $4, role = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
	`
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.Phone, string(account.Role), account.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", mapError(err))
	}
	return expectOneRow(result, "account")
}

// UpdatePassword replaces the password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOneRow(result, "account")
}

// LinkGoogleID attaches a Google subject to an existing account
func (r *AccountRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	query := `UPDATE accounts SET google_id = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, googleID)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", mapError(err))
	}
	return expectOneRow(result, "account")
}

// UpdateLastLogin stamps the last login time
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET last_login_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetActive activates or deactivates an account
func (r *AccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	return expectOneRow(result, "account")
}

// ErrNotFound is returned by writes that matched no row
var ErrNotFound = errors.New("record not found")

func expectOneRow(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return nil
}
