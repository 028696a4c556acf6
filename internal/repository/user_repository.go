package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/schedule"
	"github.com/frostair/ac-booking/internal/utils"
)

// UserRepo provides persistence for accounts and doubles as the roster
// provider for the scheduling core: technicians are users with
// role = technician.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, email, password_hash, phone,
	   COALESCE(address,''), COALESCE(city,''), COALESCE(zip_code,''), role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Phone, &u.Address, &u.City, &u.ZipCode, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID.  The password is hashed
// with bcrypt at the given cost before storage.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, phone, address, city, zip_code, role)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, email, hash, u.Phone, u.Address, u.City, u.ZipCode, u.Role)
	if err != nil {
		if dupKeyName(err) != "" {
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
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// UpdateProfile updates the mutable profile fields.  Email, password
// and role are changed through dedicated flows, never here.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, phone=?, address=?, city=?, zip_code=?, updated_at=NOW()
		 WHERE id=?`,
		u.FirstName, u.LastName, u.Phone, u.Address, u.City, u.ZipCode, id)
	return err
}

// ListTechnicians implements schedule.RosterProvider.  It returns the
// current roster in a stable order (by id) so availability responses
// are deterministic between writes.
func (r *UserRepo) ListTechnicians(ctx context.Context) ([]schedule.Technician, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, first_name, last_name, email FROM users WHERE role = ? ORDER BY id ASC`,
		model.RoleTechnician)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]schedule.Technician, 0)
	for rows.Next() {
		var t schedule.Technician
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
