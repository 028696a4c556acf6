package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/frostair/ac-booking/internal/model"
	"github.com/frostair/ac-booking/internal/schedule"
)

// Index names the bookings table relies on.  uqBookingSlotTech is the
// storage-level backstop for the capacity invariant: it spans (date,
// time_slot, assigned_technician_id, active) where `active` is 1 for
// live bookings and NULL once cancelled, so cancelled rows and
// unassigned rows never collide.
const (
	uqBookingReference = "uq_bookings_reference"
	uqBookingSlotTech  = "uq_bookings_slot_technician"
)

// BookingRepo provides persistence for bookings.  It implements
// schedule.BookingStore for the allocation core and adds the CRUD
// operations the staff endpoints need.  All timestamps are stored in
// UTC; the date column holds the midnight-UTC day bucket.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference_number, service_type, maintenance_plan, date, time_slot,
	   customer_name, customer_email, customer_phone, customer_address, description,
	   preferred_technician_id, assigned_technician_id, status, notes, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var plan, notes sql.NullString
	var prefID, techID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.ReferenceNumber, &b.ServiceType, &plan, &b.Date, &b.TimeSlot,
		&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.CustomerAddress, &b.Description,
		&prefID, &techID, &b.Status, &notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if plan.Valid {
		b.MaintenancePlan = plan.String
	}
	if notes.Valid {
		b.Notes = notes.String
	}
	if prefID.Valid {
		id := uint64(prefID.Int64)
		b.PreferredTechnicianID = &id
	}
	if techID.Valid {
		id := uint64(techID.Int64)
		b.AssignedTechnicianID = &id
	}
	return &b, nil
}

// Create inserts a new booking and populates the generated ID and
// timestamps.  Duplicate-key violations are mapped onto the scheduler's
// sentinels so the allocator can regenerate a reference or re-run its
// fallback.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(reference_number, service_type, maintenance_plan, date, time_slot,
		 customer_name, customer_email, customer_phone, customer_address, description,
		 preferred_technician_id, assigned_technician_id, status, notes, active)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,1)`
	res, err := r.db.ExecContext(ctx, q,
		b.ReferenceNumber, b.ServiceType, nullIfEmpty(b.MaintenancePlan), b.Date, b.TimeSlot,
		b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.CustomerAddress, b.Description,
		nullableID(b.PreferredTechnicianID), nullableID(b.AssignedTechnicianID), b.Status, b.Notes,
	)
	if err != nil {
		switch dupKeyName(err) {
		case uqBookingReference:
			return schedule.ErrDuplicateReference
		case uqBookingSlotTech:
			return schedule.ErrSlotTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Read back to pick up database-assigned timestamps.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// ClaimsForDate returns one claim per non-cancelled booking whose date
// falls on the given day, assigned or not.  The half-open range query
// mirrors the day bucket used everywhere else.
func (r *BookingRepo) ClaimsForDate(ctx context.Context, day time.Time) ([]schedule.Claim, error) {
	const q = `SELECT time_slot, assigned_technician_id
			   FROM bookings
			   WHERE date >= ? AND date < ? AND status <> ?`
	rows, err := r.db.QueryContext(ctx, q, day, day.AddDate(0, 0, 1), model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var claims []schedule.Claim
	for rows.Next() {
		var c schedule.Claim
		var techID sql.NullInt64
		if err := rows.Scan(&c.TimeSlot, &techID); err != nil {
			return nil, err
		}
		if techID.Valid {
			c.TechnicianID = uint64(techID.Int64)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// ClaimsForSlot returns the assigned, non-cancelled bookings in the
// exact day and slot.
func (r *BookingRepo) ClaimsForSlot(ctx context.Context, day time.Time, slot string) ([]schedule.Claim, error) {
	const q = `SELECT time_slot, assigned_technician_id
			   FROM bookings
			   WHERE date >= ? AND date < ? AND time_slot = ? AND status <> ?
				 AND assigned_technician_id IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, q, day, day.AddDate(0, 0, 1), slot, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var claims []schedule.Claim
	for rows.Next() {
		var c schedule.Claim
		var techID int64
		if err := rows.Scan(&c.TimeSlot, &techID); err != nil {
			return nil, err
		}
		c.TechnicianID = uint64(techID)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// GetByReference fetches one booking by its customer-facing reference
// number.  Returns ErrNotFound when no row matches.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE reference_number = ? LIMIT 1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetByID fetches one booking by primary key.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? LIMIT 1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ListFilter narrows the staff booking listing.  Zero values mean "no
// filter"; DateFrom keeps bookings on or after the given day.
type ListFilter struct {
	Status      string
	ServiceType string
	DateFrom    time.Time
}

// List returns bookings matching the filter, ordered by date ascending
// the way the dispatch board shows them.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ServiceType != "" {
		conds = append(conds, "service_type = ?")
		args = append(args, f.ServiceType)
	}
	if !f.DateFrom.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.DateFrom)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus sets a booking's status.  Moving to cancelled also
// clears the `active` flag so the slot-uniqueness index releases the
// technician's capacity for that date and slot.  Returns ErrNotFound
// when the booking does not exist.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	var q string
	if model.ReleasesCapacity(status) {
		q = `UPDATE bookings SET status = ?, active = NULL, updated_at = NOW() WHERE id = ?`
	} else {
		q = `UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`
	}
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Status may equal the current value; distinguish from missing.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

// AssignTechnician reassigns a booking.  The slot-uniqueness index
// rejects the update when the technician already holds a live booking
// in the same date and slot; that collision surfaces as ErrConflict.
func (r *BookingRepo) AssignTechnician(ctx context.Context, id, technicianID uint64) error {
	const q = `UPDATE bookings SET assigned_technician_id = ?, updated_at = NOW() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, technicianID, id)
	if err != nil {
		if dupKeyName(err) == uqBookingSlotTech {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
