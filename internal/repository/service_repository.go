package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// ServiceRepo provides CRUD operations on the services table.
// Services are the optional add-ons a reservation can bundle;
// their prices are snapshotted onto reservations at booking time
// so edits here never affect existing bookings.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, description, price_cents, is_active, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Description, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new service and fills in the generated id and
// timestamps.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	const q = `INSERT INTO services (description, price_cents, is_active) VALUES (?, ?, 1)`
	result, err := r.db.ExecContext(ctx, q, s.Description, s.PriceCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	loaded, err := scanService(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *loaded
	return nil
}

// GetByID fetches a service regardless of its active flag.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	s, err := scanService(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns services ordered by description. When
// includeInactive is false only active services are returned.
func (r *ServiceRepo) List(ctx context.Context, includeInactive bool) ([]model.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY description`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]model.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

// GetActiveByIDs resolves a batch of service ids to active rows in
// one query. Missing or inactive ids are simply absent from the
// result; the caller decides whether a partial match is an error.
func (r *ServiceRepo) GetActiveByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT ` + serviceColumns + ` FROM services WHERE is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	services := make([]model.Service, 0, len(ids))
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

// Update rewrites the mutable columns of a service.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	const q = `UPDATE services SET description = ?, price_cents = ?, is_active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, s.Description, s.PriceCents, s.IsActive, s.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a service. Existing reservation lines keep
// their snapshots; only new selections are blocked.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	const q = `UPDATE services SET is_active = 0 WHERE id = ? AND is_active = 1`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
