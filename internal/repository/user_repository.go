package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/venuebook/venue-booking-api/internal/model"
	"github.com/venuebook/venue-booking-api/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		strings.TrimSpace(name), email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns users ordered by name with paging and the total row
// count. role narrows the list to one role when non-empty; inactive
// accounts are included only when includeInactive is set.
func (r *UserRepo) List(ctx context.Context, includeInactive bool, role string, page, pageSize int) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	where := " WHERE 1=1"
	args := []any{}
	if !includeInactive {
		where += " AND is_active=1"
	}
	if role != "" {
		where += " AND role=?"
		args = append(args, role)
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := "SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users" +
		where + " ORDER BY name, id LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update rewrites the profile columns of a user. Returns
// ErrEmailExists when the new email collides and ErrNotFound when
// the user does not exist.
func (r *UserRepo) Update(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Name = strings.TrimSpace(u.Name)
	result, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, role=?, is_active=? WHERE id=?",
		u.Name, u.Email, u.Role, u.IsActive, u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, u.ID); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SetPassword rehashes and stores a new password.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
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

// Deactivate soft-deletes a user so they can no longer log in.
// Their reservations and comments keep a valid reference.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=0 WHERE id=? AND is_active=1", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		// Already inactive.
	}
	return nil
}

// HardDelete permanently removes a user. The account must be
// deactivated first; ErrConflict is returned while it is active or
// while reservations or comments still reference it.
func (r *UserRepo) HardDelete(ctx context.Context, id uint64) error {
	u, err := r.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if u.IsActive {
		return ErrConflict
	}
	result, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		if isRowReferenced(err) {
			return ErrConflict
		}
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

// CustomerContact returns the display name and email of a user.
// Implements the recipient directory consumed by the dispatcher.
func (r *UserRepo) CustomerContact(ctx context.Context, userID uint64) (string, string, error) {
	var name, email string
	err := r.DB.QueryRowContext(ctx,
		"SELECT name,email FROM users WHERE id=? AND is_active=1 LIMIT 1",
		userID).Scan(&name, &email)
	if err == sql.ErrNoRows {
		return "", "", ErrNotFound
	}
	return name, email, err
}

// StaffRecipients returns the ids of all active staff and admin
// accounts, the audience for new-booking notices.
func (r *UserRepo) StaffRecipients(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM users WHERE role IN (?,?) AND is_active=1",
		model.RoleStaff, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
