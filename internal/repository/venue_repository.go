package repository

import (
	"context"
	"database/sql"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// VenueRepo provides CRUD operations on the venues table. Venues
// are reference data: they carry no booking invariants beyond the
// active flag, which controls whether new reservations may target
// them. Deleting a venue is always a soft delete so existing
// reservations keep a valid reference.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, title, address, capacity, price_cents, is_active, created_at, updated_at`

func scanVenue(row interface{ Scan(...any) error }) (*model.Venue, error) {
	var v model.Venue
	err := row.Scan(&v.ID, &v.Title, &v.Address, &v.Capacity, &v.PriceCents, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new venue and fills in the generated id and
// timestamps.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (title, address, capacity, price_cents, is_active) VALUES (?, ?, ?, ?, 1)`
	result, err := r.db.ExecContext(ctx, q, v.Title, v.Address, v.Capacity, v.PriceCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	const sel = `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`
	loaded, err := scanVenue(r.db.QueryRowContext(ctx, sel, v.ID))
	if err != nil {
		return err
	}
	*v = *loaded
	return nil
}

// GetByID fetches a venue regardless of its active flag. Returns
// ErrNotFound when no row exists.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`
	v, err := scanVenue(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns venues ordered by title. When includeInactive is
// false only active venues are returned.
func (r *VenueRepo) List(ctx context.Context, includeInactive bool) ([]model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *v)
	}
	return venues, rows.Err()
}

// Update rewrites the mutable columns of a venue. Returns
// ErrNotFound when the venue does not exist.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues SET title = ?, address = ?, capacity = ?, price_cents = ?, is_active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, v.Title, v.Address, v.Capacity, v.PriceCents, v.IsActive, v.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a venue. Fails with ErrConflict when the
// venue still has active reservations.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	const check = `SELECT COUNT(*) FROM reservations WHERE venue_id = ? AND is_active = 1`
	var active int
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	const q = `UPDATE venues SET is_active = 0 WHERE id = ? AND is_active = 1`
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
