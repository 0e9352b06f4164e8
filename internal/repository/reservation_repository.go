package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reservationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReservationRepository {
	return &reservationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "reservation").Logger(),
	}
}

const reservationColumns = `
	id, name, email, phone, date, time, guests, occasion, special_request, staff_note,
	status, created_at, updated_at`

func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (name, email, phone, date, time, guests, occasion, special_request, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		res.Name, res.Email, res.Phone, res.Date, res.Time, res.Guests,
		res.Occasion, res.SpecialRequest, res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("email", res.Email).Msg("failed to create reservation")
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("reservation_id", id).Msg("failed to query reservation")
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}

	return res, nil
}

func (r *reservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	var (
		args       argList
		conditions []string
	)

	if filter.Status != "" {
		conditions = append(conditions, "status = "+args.add(filter.Status))
	}
	if filter.Date != nil {
		conditions = append(conditions, "date = "+args.add(*filter.Date))
	}
	if filter.Search != "" {
		p := args.add(containsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR phone ILIKE %s)", p, p, p))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, time DESC"

	return r.query(ctx, query, args...)
}

func (r *reservationRepository) CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ReservationStatus]int)
	for rows.Next() {
		var status model.ReservationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reservation count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func (r *reservationRepository) CountOnDate(ctx context.Context, day time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE date = $1`, day).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return n, nil
}

func (r *reservationRepository) CountUpcoming(ctx context.Context, day time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE date > $1 AND status <> $2`,
		day, model.ReservationCancelled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming reservations: %w", err)
	}
	return n, nil
}

func (r *reservationRepository) ListOnDate(ctx context.Context, day time.Time, limit int) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE date = $1 ORDER BY time LIMIT $2`
	return r.query(ctx, query, day, limit)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, from []model.ReservationStatus, to model.ReservationStatus) (bool, error) {
	names := make([]string, len(from))
	for i, s := range from {
		names[i] = string(s)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1 AND status = ANY($3)`,
		id, to, names,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("reservation_id", id).Msg("failed to update reservation status")
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *reservationRepository) SetStaffNote(ctx context.Context, id int64, note string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE reservations SET staff_note = $2, updated_at = NOW() WHERE id = $1`, id, note,
	)
	if err != nil {
		return fmt.Errorf("failed to save staff note: %w", err)
	}
	return nil
}

func (r *reservationRepository) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE LOWER(email) = LOWER($1)
		ORDER BY date DESC, time DESC`
	return r.query(ctx, query, email)
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.Name, &res.Email, &res.Phone, &res.Date, &res.Time, &res.Guests,
		&res.Occasion, &res.SpecialRequest, &res.StaffNote, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) query(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query reservations")
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}
