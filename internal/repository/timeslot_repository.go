package repository

import (
	"context"
	"database/sql"

	"github.com/venuebook/venue-booking-api/internal/model"
)

// TimeSlotRepo provides CRUD operations on the time_slots table.
// Slots referenced by reservations are protected from deletion so
// the booking history stays resolvable.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo returns a TimeSlotRepo bound to the given database.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

const timeSlotColumns = `id, display_order, start_time, end_time, is_active, created_at, updated_at`

func scanTimeSlot(row interface{ Scan(...any) error }) (*model.TimeSlot, error) {
	var s model.TimeSlot
	err := row.Scan(&s.ID, &s.DisplayOrder, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new time slot and fills in the generated id and
// timestamps.
func (r *TimeSlotRepo) Create(ctx context.Context, s *model.TimeSlot) error {
	const q = `INSERT INTO time_slots (display_order, start_time, end_time, is_active) VALUES (?, ?, ?, 1)`
	result, err := r.db.ExecContext(ctx, q, s.DisplayOrder, s.StartTime, s.EndTime)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = ?`
	loaded, err := scanTimeSlot(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *loaded
	return nil
}

// GetByID fetches a slot regardless of its active flag.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	const q = `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = ?`
	s, err := scanTimeSlot(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns slots ordered by display order.
func (r *TimeSlotRepo) List(ctx context.Context, includeInactive bool) ([]model.TimeSlot, error) {
	q := `SELECT ` + timeSlotColumns + ` FROM time_slots`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY display_order`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		s, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// Update rewrites the mutable columns of a slot.
func (r *TimeSlotRepo) Update(ctx context.Context, s *model.TimeSlot) error {
	const q = `UPDATE time_slots SET display_order = ?, start_time = ?, end_time = ?, is_active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, s.DisplayOrder, s.StartTime, s.EndTime, s.IsActive, s.ID)
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

// Delete soft-deletes a slot. Fails with ErrConflict while any
// reservation, active or not, still references it.
func (r *TimeSlotRepo) Delete(ctx context.Context, id uint64) error {
	const check = `SELECT COUNT(*) FROM reservations WHERE time_slot_id = ?`
	var refs int
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	const q = `UPDATE time_slots SET is_active = 0 WHERE id = ? AND is_active = 1`
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
