package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frostair/ac-booking/internal/model"
)

// ContactRepo provides persistence for contact-form messages.
type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a new message with status "new" and populates the
// generated ID.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message, status) VALUES (?,?,?,?,?,?)`,
		c.Name, c.Email, c.Phone, c.Subject, c.Message, model.ContactNew)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Status = model.ContactNew
	return nil
}

// List returns messages, newest first, optionally filtered by status.
func (r *ContactRepo) List(ctx context.Context, status string) ([]*model.Contact, error) {
	q := `SELECT id, name, email, COALESCE(phone,''), subject, message, status, created_at, updated_at
		  FROM contacts`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Contact, 0)
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject, &c.Message,
			&c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// UpdateStatus moves a message through the inbox workflow.  Returns
// ErrNotFound when no message has the given id.
func (r *ContactRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}
