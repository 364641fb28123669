package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/venuebook/venue-booking-api/internal/booking"
	"github.com/venuebook/venue-booking-api/internal/model"
)

// ReservationRepo is the persistence side of the booking engine.
// All mutations run through a ReservationUnit so the conflict
// check and the write share one transaction; the reservations
// table additionally carries a unique index over
// (venue_id, reservation_date, time_slot_id, slot_key) where
// slot_key is a generated column that is NULL for inactive rows,
// so a race lost between two concurrent bookings surfaces as a
// duplicate-key error on the loser's insert. That error is
// translated here into the engine's SlotConflict.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for report queries that join
// across tables.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, customer_id, venue_id, time_slot_id, DATE_FORMAT(reservation_date, '%Y-%m-%d'), theme, photo_url, cancel_reason, venue_price_cents, total_price_cents, status, is_active, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var theme, photo, reason sql.NullString
	err := row.Scan(
		&res.ID, &res.CustomerID, &res.VenueID, &res.TimeSlotID, &res.Date,
		&theme, &photo, &reason,
		&res.VenuePriceCents, &res.TotalPriceCents, &res.Status, &res.IsActive,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if theme.Valid {
		v := theme.String
		res.Theme = &v
	}
	if photo.Valid {
		v := photo.String
		res.PhotoURL = &v
	}
	if reason.Valid {
		v := reason.String
		res.CancelReason = &v
	}
	return &res, nil
}

// Begin opens one atomic unit of work. The caller must Commit or
// Rollback it.
func (r *ReservationRepo) Begin(ctx context.Context) (booking.ReservationUnit, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ReservationUnit{tx: tx}, nil
}

// FindByID loads a reservation with its service lines. Implements
// the engine's store port, so absence is reported as a typed
// not-found error rather than sql.ErrNoRows.
func (r *ReservationRepo) FindByID(ctx context.Context, id uint64, includeInactive bool) (*model.Reservation, []model.ReservationService, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if !includeInactive {
		q += ` AND is_active = 1`
	}
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil, booking.NewError(booking.KindNotFound, "reservation %d not found", id)
	}
	if err != nil {
		return nil, nil, booking.WrapError(booking.KindDependency, err, "reservation lookup failed")
	}
	lines, err := r.linesFor(ctx, id)
	if err != nil {
		return nil, nil, booking.WrapError(booking.KindDependency, err, "service line lookup failed")
	}
	return res, lines, nil
}

func (r *ReservationRepo) linesFor(ctx context.Context, reservationID uint64) ([]model.ReservationService, error) {
	const q = `SELECT id, reservation_id, service_id, price_cents FROM reservation_services WHERE reservation_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.ReservationService, 0)
	for rows.Next() {
		var line model.ReservationService
		if err := rows.Scan(&line.ID, &line.ReservationID, &line.ServiceID, &line.PriceCents); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListQuery narrows and orders a reservation listing. Zero values
// mean "no filter". SortBy accepts date, created, total and
// status; anything else falls back to created.
type ListQuery struct {
	Page            int
	PageSize        int
	Status          string
	VenueID         uint64
	CustomerID      uint64
	DateFrom        string
	DateTo          string
	IncludeInactive bool
	SortBy          string
	SortDesc        bool
}

// sortColumns whitelists the ORDER BY targets so client input
// never reaches the SQL text.
var sortColumns = map[string]string{
	"date":    "r.reservation_date",
	"created": "r.created_at",
	"total":   "r.total_price_cents",
	"status":  "r.status",
}

// ReservationView is the listing shape returned to handlers: the
// reservation joined with its venue, slot and customer plus the
// service lines.
type ReservationView struct {
	ID              uint64            `json:"id"`
	Date            string            `json:"date"`
	Status          string            `json:"status"`
	IsActive        bool              `json:"is_active"`
	Theme           *string           `json:"theme,omitempty"`
	PhotoURL        *string           `json:"photo_url,omitempty"`
	CancelReason    *string           `json:"cancel_reason,omitempty"`
	VenuePriceCents int64             `json:"venue_price_cents"`
	TotalPriceCents int64             `json:"total_price_cents"`
	VenueID         uint64            `json:"venue_id"`
	VenueTitle      string            `json:"venue_title"`
	TimeSlotID      uint64            `json:"time_slot_id"`
	SlotStart       string            `json:"slot_start"`
	SlotEnd         string            `json:"slot_end"`
	CustomerID      uint64            `json:"customer_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CreatedAt       string            `json:"created_at"`
	Services        []ServiceLineView `json:"services"`
}

// ServiceLineView is one add-on row inside a ReservationView.
type ServiceLineView struct {
	ServiceID   uint64 `json:"service_id"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// List returns a page of reservations matching the query plus the
// total match count for pagination.
func (r *ReservationRepo) List(ctx context.Context, q ListQuery) ([]ReservationView, int, error) {
	where := make([]string, 0, 6)
	args := make([]any, 0, 6)
	if !q.IncludeInactive {
		where = append(where, "r.is_active = 1")
	}
	if q.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, q.Status)
	}
	if q.VenueID != 0 {
		where = append(where, "r.venue_id = ?")
		args = append(args, q.VenueID)
	}
	if q.CustomerID != 0 {
		where = append(where, "r.customer_id = ?")
		args = append(args, q.CustomerID)
	}
	if q.DateFrom != "" {
		where = append(where, "r.reservation_date >= ?")
		args = append(args, q.DateFrom)
	}
	if q.DateTo != "" {
		where = append(where, "r.reservation_date <= ?")
		args = append(args, q.DateTo)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations r`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := sortColumns[q.SortBy]
	if !ok {
		order = sortColumns["created"]
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	offset := (q.Page - 1) * q.PageSize

	query := `SELECT r.id, DATE_FORMAT(r.reservation_date, '%Y-%m-%d'), r.status, r.is_active,
	                 r.theme, r.photo_url, r.cancel_reason,
	                 r.venue_price_cents, r.total_price_cents,
	                 r.venue_id, v.title, r.time_slot_id, t.start_time, t.end_time,
	                 r.customer_id, u.name, u.email, r.created_at
	          FROM reservations r
	          JOIN venues v ON v.id = r.venue_id
	          JOIN time_slots t ON t.id = r.time_slot_id
	          JOIN users u ON u.id = r.customer_id` + clause + `
	          ORDER BY ` + order + ` ` + dir + `, r.id ` + dir + `
	          LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, q.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	views := make([]ReservationView, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var v ReservationView
		var theme, photo, reason sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(
			&v.ID, &v.Date, &v.Status, &v.IsActive,
			&theme, &photo, &reason,
			&v.VenuePriceCents, &v.TotalPriceCents,
			&v.VenueID, &v.VenueTitle, &v.TimeSlotID, &v.SlotStart, &v.SlotEnd,
			&v.CustomerID, &v.CustomerName, &v.CustomerEmail, &createdAt,
		); err != nil {
			return nil, 0, err
		}
		if theme.Valid {
			s := theme.String
			v.Theme = &s
		}
		if photo.Valid {
			s := photo.String
			v.PhotoURL = &s
		}
		if reason.Valid {
			s := reason.String
			v.CancelReason = &s
		}
		if createdAt.Valid {
			v.CreatedAt = createdAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		v.Services = []ServiceLineView{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(views) == 0 {
		return views, total, nil
	}

	// Populate service lines for the whole page in one query.
	ids := make([]any, 0, len(views))
	placeholders := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
		placeholders = append(placeholders, "?")
	}
	lineQ := `SELECT rs.reservation_id, rs.service_id, s.description, rs.price_cents
	          FROM reservation_services rs
	          JOIN services s ON s.id = rs.service_id
	          WHERE rs.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY rs.reservation_id, rs.id`
	lrows, err := r.db.QueryContext(ctx, lineQ, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var rid uint64
		var line ServiceLineView
		if err := lrows.Scan(&rid, &line.ServiceID, &line.Description, &line.PriceCents); err != nil {
			return nil, 0, err
		}
		if idx, ok := index[rid]; ok {
			views[idx].Services = append(views[idx].Services, line)
		}
	}
	return views, total, lrows.Err()
}

// StatusCounts returns the number of reservations per status,
// including soft-deleted rows. Feeds the statistics endpoint.
func (r *ReservationRepo) StatusCounts(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT status, COUNT(*) FROM reservations GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// VenueRevenue is one row of the revenue summary: booked totals
// per venue over active, non-cancelled reservations.
type VenueRevenue struct {
	VenueID      uint64 `json:"venue_id"`
	VenueTitle   string `json:"venue_title"`
	Reservations int64  `json:"reservations"`
	RevenueCents int64  `json:"revenue_cents"`
}

// RevenueByVenue aggregates confirmed and completed bookings per
// venue.
func (r *ReservationRepo) RevenueByVenue(ctx context.Context) ([]VenueRevenue, error) {
	const q = `SELECT r.venue_id, v.title, COUNT(*), COALESCE(SUM(r.total_price_cents), 0)
	           FROM reservations r
	           JOIN venues v ON v.id = r.venue_id
	           WHERE r.is_active = 1 AND r.status IN (?, ?)
	           GROUP BY r.venue_id, v.title
	           ORDER BY SUM(r.total_price_cents) DESC`
	rows, err := r.db.QueryContext(ctx, q, model.StatusConfirmed, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]VenueRevenue, 0)
	for rows.Next() {
		var v VenueRevenue
		if err := rows.Scan(&v.VenueID, &v.VenueTitle, &v.Reservations, &v.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ReservationUnit wraps one *sql.Tx and implements the engine's
// unit-of-work port.
type ReservationUnit struct {
	tx *sql.Tx
}

// FindConflict locks and inspects the slot triple inside the
// transaction. The row lock plus the unique index make the
// check-then-write sequence indivisible for concurrent callers.
func (u *ReservationUnit) FindConflict(ctx context.Context, venueID uint64, date string, slotID, excludeID uint64) (bool, error) {
	const q = `SELECT id FROM reservations
	           WHERE venue_id = ? AND reservation_date = ? AND time_slot_id = ? AND is_active = 1 AND id <> ?
	           LIMIT 1 FOR UPDATE`
	var id uint64
	err := u.tx.QueryRowContext(ctx, q, venueID, date, slotID, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert persists a new reservation with its service lines and
// reads back the generated id and timestamps.
func (u *ReservationUnit) Insert(ctx context.Context, res *model.Reservation, lines []model.ReservationService) error {
	const q = `INSERT INTO reservations
	           (customer_id, venue_id, time_slot_id, reservation_date, theme, photo_url, venue_price_cents, total_price_cents, status, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`
	result, err := u.tx.ExecContext(ctx, q,
		res.CustomerID, res.VenueID, res.TimeSlotID, res.Date,
		res.Theme, res.PhotoURL, res.VenuePriceCents, res.TotalPriceCents, res.Status)
	if err != nil {
		return u.translateWrite(err, res)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	if err := u.insertLines(ctx, res.ID, lines); err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return u.tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// Update rewrites the mutable columns and, when lines is non-nil,
// replaces the service lines wholesale.
func (u *ReservationUnit) Update(ctx context.Context, res *model.Reservation, lines []model.ReservationService) error {
	const q = `UPDATE reservations
	           SET venue_id = ?, time_slot_id = ?, reservation_date = ?, theme = ?, photo_url = ?,
	               venue_price_cents = ?, total_price_cents = ?
	           WHERE id = ?`
	if _, err := u.tx.ExecContext(ctx, q,
		res.VenueID, res.TimeSlotID, res.Date, res.Theme, res.PhotoURL,
		res.VenuePriceCents, res.TotalPriceCents, res.ID); err != nil {
		return u.translateWrite(err, res)
	}
	if lines != nil {
		if _, err := u.tx.ExecContext(ctx, `DELETE FROM reservation_services WHERE reservation_id = ?`, res.ID); err != nil {
			return err
		}
		if err := u.insertLines(ctx, res.ID, lines); err != nil {
			return err
		}
	}
	return nil
}

// SetStatus updates only the status column.
func (u *ReservationUnit) SetStatus(ctx context.Context, id uint64, status string) error {
	_, err := u.tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	return err
}

// SoftDelete cancels and deactivates a reservation, recording the
// reason when one was given.
func (u *ReservationUnit) SoftDelete(ctx context.Context, id uint64, reason string) error {
	const q = `UPDATE reservations SET status = ?, is_active = 0, cancel_reason = NULLIF(?, '') WHERE id = ?`
	_, err := u.tx.ExecContext(ctx, q, model.StatusCancelled, reason, id)
	return err
}

// Reactivate restores a soft-deleted reservation to pending. May
// collide with a booking made in the meantime, which surfaces as
// a duplicate-key error on the unique slot index.
func (u *ReservationUnit) Reactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE reservations SET status = ?, is_active = 1, cancel_reason = NULL WHERE id = ?`
	if _, err := u.tx.ExecContext(ctx, q, model.StatusPending, id); err != nil {
		if isDuplicateKey(err) {
			return booking.NewError(booking.KindSlotConflict, "the slot of reservation %d has been taken", id)
		}
		return err
	}
	return nil
}

// HardDelete removes the reservation and its service lines
// permanently. Lines go first; there is no FK cascade.
func (u *ReservationUnit) HardDelete(ctx context.Context, id uint64) error {
	if _, err := u.tx.ExecContext(ctx, `DELETE FROM reservation_services WHERE reservation_id = ?`, id); err != nil {
		return err
	}
	_, err := u.tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}

// Commit finishes the unit of work.
func (u *ReservationUnit) Commit() error { return u.tx.Commit() }

// Rollback abandons the unit of work.
func (u *ReservationUnit) Rollback() error { return u.tx.Rollback() }

func (u *ReservationUnit) insertLines(ctx context.Context, reservationID uint64, lines []model.ReservationService) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_services (reservation_id, service_id, price_cents) VALUES `
	args := make([]any, 0, len(lines)*3)
	for i, line := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, reservationID, line.ServiceID, line.PriceCents)
	}
	_, err := u.tx.ExecContext(ctx, query, args...)
	return err
}

// translateWrite maps a duplicate-key violation on the slot index
// to the engine's SlotConflict so a lost race reads the same as a
// conflict caught by the pre-check.
func (u *ReservationUnit) translateWrite(err error, res *model.Reservation) error {
	if isDuplicateKey(err) {
		return booking.NewError(booking.KindSlotConflict,
			"venue %d is already booked on %s for slot %d", res.VenueID, res.Date, res.TimeSlotID)
	}
	return err
}
