package repository

import (
	"context"
	"errors"
	"fmt"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type accountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool, logger zerolog.Logger) AccountRepository {
	return &accountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "account").Logger(),
	}
}

const accountColumns = `a.id, a.username, a.email, a.password_hash, a.first_name, a.last_name, a.is_active, a.created_at`

const staffColumns = `s.id, s.account_id, s.role, s.phone, s.is_active, s.created_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *accountRepository) CreateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		r.logger.Error().Err(err).Str("username", a.Username).Msg("failed to create account")
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) getAccount(ctx context.Context, where string, arg any) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts a WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query account")
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

func (r *accountRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	return r.getAccount(ctx, "a.id = $1", id)
}

func (r *accountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.getAccount(ctx, "a.username = $1", username)
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) UpdateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET email = $2, first_name = $3, last_name = $4, is_active = $5
		WHERE id = $1`,
		a.ID, a.Email, a.FirstName, a.LastName, a.IsActive,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("account_id", a.ID).Msg("failed to update account")
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (r *accountRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

func (r *accountRepository) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Int64("account_id", id).Msg("failed to delete account")
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (r *accountRepository) CreateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO staff_profiles (account_id, role, phone, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.AccountID, p.Role, p.Phone, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyStaff
		}
		r.logger.Error().Err(err).Int64("account_id", p.AccountID).Msg("failed to create staff profile")
		return fmt.Errorf("failed to create staff profile: %w", err)
	}
	return nil
}

func (r *accountRepository) GetStaffProfile(ctx context.Context, accountID int64) (*model.StaffProfile, error) {
	var p model.StaffProfile
	err := r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff_profiles s WHERE s.account_id = $1`, accountID).
		Scan(&p.ID, &p.AccountID, &p.Role, &p.Phone, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query staff profile: %w", err)
	}
	return &p, nil
}

func scanStaffMember(row pgx.Row) (*model.StaffMember, error) {
	var m model.StaffMember
	p, a := &m.Profile, &m.Account
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Role, &p.Phone, &p.IsActive, &p.CreatedAt,
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *accountRepository) GetStaffMember(ctx context.Context, profileID int64) (*model.StaffMember, error) {
	query := `SELECT ` + staffColumns + `, ` + accountColumns + `
		FROM staff_profiles s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.id = $1`

	m, err := scanStaffMember(r.pool.QueryRow(ctx, query, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query staff member: %w", err)
	}
	return m, nil
}

func (r *accountRepository) ListStaff(ctx context.Context) ([]model.StaffMember, error) {
	query := `SELECT ` + staffColumns + `, ` + accountColumns + `
		FROM staff_profiles s
		JOIN accounts a ON a.id = s.account_id
		ORDER BY s.role, a.first_name, a.username`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query staff")
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	staff := make([]model.StaffMember, 0)
	for rows.Next() {
		m, err := scanStaffMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		staff = append(staff, *m)
	}

	return staff, rows.Err()
}

func (r *accountRepository) UpdateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error {
	_, err := tx.Exec(ctx, `UPDATE staff_profiles SET role = $2, phone = $3 WHERE id = $1`, p.ID, p.Role, p.Phone)
	if err != nil {
		r.logger.Error().Err(err).Int64("profile_id", p.ID).Msg("failed to update staff profile")
		return fmt.Errorf("failed to update staff profile: %w", err)
	}
	return nil
}

func (r *accountRepository) SetStaffActive(ctx context.Context, profileID int64, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE staff_profiles SET is_active = $2 WHERE id = $1`, profileID, active)
	if err != nil {
		return fmt.Errorf("failed to update staff profile: %w", err)
	}
	return nil
}

func (r *accountRepository) CountOwners(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff_profiles WHERE role = $1`, model.RoleOwner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}

func (r *accountRepository) GetBlocked(ctx context.Context, email string) (*model.BlockedCustomer, error) {
	var b model.BlockedCustomer
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, reason, blocked_at, blocked_by
		FROM blocked_customers
		WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&b.ID, &b.Email, &b.Reason, &b.BlockedAt, &b.BlockedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to query blocked customer")
		return nil, fmt.Errorf("failed to query blocked customer: %w", err)
	}
	return &b, nil
}

func (r *accountRepository) Block(ctx context.Context, b *model.BlockedCustomer) (bool, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blocked_customers (email, reason, blocked_by)
		VALUES ($1, $2, $3)
		ON CONFLICT ((LOWER(email))) DO NOTHING
		RETURNING id, blocked_at`,
		b.Email, b.Reason, b.BlockedBy,
	).Scan(&b.ID, &b.BlockedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error().Err(err).Str("email", b.Email).Msg("failed to block customer")
		return false, fmt.Errorf("failed to block customer: %w", err)
	}
	return true, nil
}

func (r *accountRepository) Unblock(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM blocked_customers WHERE LOWER(email) = LOWER($1)`, email); err != nil {
		return fmt.Errorf("failed to unblock customer: %w", err)
	}
	return nil
}
