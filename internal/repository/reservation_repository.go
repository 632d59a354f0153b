package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hall-booking/internal/booking"
	"github.com/iliyamo/hall-booking/internal/model"
)

// ReservationRepo provides data access to the `reservations` table.  Dates
// are stored as DATE columns and times of day as minutes since midnight,
// matching booking.TimeOfDay.  All timestamps are stored in UTC.
//
// Writes that depend on the absence of a conflicting reservation (Create,
// Update) run inside a transaction that first locks the venue row, so two
// concurrent bookings of the same venue serialize and the second one sees
// the first one's rows.  The overlap decision itself is booking.Span.Overlaps;
// SQL only prefilters candidates by date range.
type ReservationRepo struct{ DB *sql.DB }

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

const reservationColumns = `r.id, r.user_id, r.venue_id, r.date_start, r.date_end,
	r.time_start, r.time_end, r.event_type, r.description, r.headcount,
	r.total_price_cents, r.status, r.created_at, r.updated_at,
	u.full_name, v.name`

const reservationJoins = ` FROM reservations r
	JOIN users u ON u.id = r.user_id
	JOIN venues v ON v.id = r.venue_id`

// Create inserts a reservation after verifying inside a single transaction
// that no active reservation overlaps the requested span.  On conflict it
// returns booking.ErrConflict and writes nothing.  The generated ID and
// store-assigned timestamps are populated on the record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.checkConflictTx(ctx, tx, res, 0); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, venue_id, date_start, date_end, time_start, time_end,
		 event_type, description, headcount, total_price_cents, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		res.UserID, res.VenueID, dateArg(res.DateStart), dateEndArg(res.DateEnd),
		int(res.TimeStart), int(res.TimeEnd), res.EventType, res.Description,
		res.Headcount, res.TotalPriceCents, string(res.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM reservations WHERE id=?", res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update overwrites the mutable fields of a reservation after re-running
// the conflict check with the reservation itself excluded.  Status, owner
// and venue are not touched here; status changes go through SetStatus.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.checkConflictTx(ctx, tx, res, res.ID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET date_start=?, date_end=?, time_start=?, time_end=?,
		 event_type=?, description=?, headcount=?, total_price_cents=?
		 WHERE id=?`,
		dateArg(res.DateStart), dateEndArg(res.DateEnd), int(res.TimeStart), int(res.TimeEnd),
		res.EventType, res.Description, res.Headcount, res.TotalPriceCents, res.ID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// the row may exist with identical values; verify before reporting
		var exists int
		if scanErr := tx.QueryRowContext(ctx,
			"SELECT 1 FROM reservations WHERE id=?", res.ID).Scan(&exists); scanErr != nil {
			return scanErr
		}
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM reservations WHERE id=?", res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// checkConflictTx locks the venue row and every active reservation whose
// date range could intersect the requested span, then applies the exact
// overlap predicate.  excludeID skips the reservation being updated.
func (r *ReservationRepo) checkConflictTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, excludeID uint64) error {
	var venueID uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM venues WHERE id=? FOR UPDATE", res.VenueID).Scan(&venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: venue %d", booking.ErrNotFound, res.VenueID)
		}
		return err
	}

	span := res.Span()
	rows, err := tx.QueryContext(ctx,
		`SELECT date_start, date_end, time_start, time_end
		 FROM reservations
		 WHERE venue_id = ? AND status <> 'CANCELLED' AND id <> ?
		   AND date_start <= ? AND COALESCE(date_end, date_start) >= ?
		 FOR UPDATE`,
		res.VenueID, excludeID, dateArg(span.EndDate()), dateArg(span.DateStart))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var other booking.Span
		var dateEnd sql.NullTime
		var ts, te int
		if err := rows.Scan(&other.DateStart, &dateEnd, &ts, &te); err != nil {
			return err
		}
		if dateEnd.Valid {
			d := dateEnd.Time
			other.DateEnd = &d
		}
		other.TimeStart = booking.TimeOfDay(ts)
		other.TimeEnd = booking.TimeOfDay(te)
		if span.Overlaps(other) {
			return fmt.Errorf("%w: venue %d already booked on the requested slot",
				booking.ErrConflict, res.VenueID)
		}
	}
	return rows.Err()
}

// GetByID fetches a reservation with owner and venue names joined in.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+reservationJoins+" WHERE r.id=?", id)
	return scanReservation(row)
}

// SetStatus performs a compare-and-set status transition.  The update only
// applies while the reservation is still in the expected `from` status, so
// a concurrent transition makes the second writer fail with
// booking.ErrInvalidState instead of silently overwriting.
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, from, to booking.Status) (model.Reservation, error) {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE reservations SET status=? WHERE id=? AND status=?",
		string(to), id, string(from))
	if err != nil {
		return model.Reservation{}, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.Reservation{}, err
	}
	if n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM reservations WHERE id=?", id).Scan(&exists); err != nil {
			return model.Reservation{}, err
		}
		return model.Reservation{}, fmt.Errorf("%w: reservation %d is no longer %s",
			booking.ErrInvalidState, id, from)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a reservation unconditionally.  There is deliberately no
// status guard here; the service layer restricts the operation to admins.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns a page of reservations ordered by start date and time
// descending, with the total count.
func (r *ReservationRepo) ListAll(ctx context.Context, limit, offset int) ([]model.Reservation, int64, error) {
	return r.listPage(ctx, "", nil, limit, offset)
}

// ListByStatus returns a page of reservations in the given status.
func (r *ReservationRepo) ListByStatus(ctx context.Context, status booking.Status, limit, offset int) ([]model.Reservation, int64, error) {
	return r.listPage(ctx, " WHERE r.status = ?", []interface{}{string(status)}, limit, offset)
}

// ListByUser returns a page of one user's reservations, optionally
// filtered by status, newest span first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, status *booking.Status, limit, offset int) ([]model.Reservation, int64, error) {
	where := " WHERE r.user_id = ?"
	args := []interface{}{userID}
	if status != nil {
		where += " AND r.status = ?"
		args = append(args, string(*status))
	}
	return r.listPage(ctx, where, args, limit, offset)
}

// ListFutureByUser returns the user's reservations whose effective end
// date is on or after asOf, soonest first.
func (r *ReservationRepo) ListFutureByUser(ctx context.Context, userID uint64, asOf time.Time, limit, offset int) ([]model.Reservation, int64, error) {
	where := " WHERE r.user_id = ? AND COALESCE(r.date_end, r.date_start) >= ?"
	args := []interface{}{userID, dateArg(asOf)}
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := "SELECT " + reservationColumns + reservationJoins + where +
		" ORDER BY r.date_start ASC, r.time_start ASC LIMIT ? OFFSET ?"
	items, err := r.queryList(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByVenue returns every reservation for a venue, newest span first.
func (r *ReservationRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Reservation, error) {
	return r.queryList(ctx,
		"SELECT "+reservationColumns+reservationJoins+
			" WHERE r.venue_id = ? ORDER BY r.date_start DESC, r.time_start DESC", venueID)
}

// ListByVenueOnDate returns the reservations occupying a venue on a given
// calendar day, earliest window first.  Used for availability views.
func (r *ReservationRepo) ListByVenueOnDate(ctx context.Context, venueID uint64, date time.Time) ([]model.Reservation, error) {
	return r.queryList(ctx,
		"SELECT "+reservationColumns+reservationJoins+
			` WHERE r.venue_id = ? AND r.date_start <= ? AND COALESCE(r.date_end, r.date_start) >= ?
			  ORDER BY r.time_start ASC`,
		venueID, dateArg(date), dateArg(date))
}

// CompletePast marks confirmed reservations whose effective end date is
// strictly before asOf as COMPLETED and returns how many rows changed.
// The background sweep in cmd/server calls this periodically.
func (r *ReservationRepo) CompletePast(ctx context.Context, asOf time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE reservations SET status='COMPLETED'
		 WHERE status='CONFIRMED' AND COALESCE(date_end, date_start) < ?`,
		dateArg(asOf))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ReservationRepo) listPage(ctx context.Context, where string, args []interface{}, limit, offset int) ([]model.Reservation, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := "SELECT " + reservationColumns + reservationJoins + where +
		" ORDER BY r.date_start DESC, r.time_start DESC LIMIT ? OFFSET ?"
	items, err := r.queryList(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ReservationRepo) queryList(ctx context.Context, query string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	return items, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(s scanner) (model.Reservation, error) {
	var res model.Reservation
	var dateEnd sql.NullTime
	var desc sql.NullString
	var ts, te int
	var status string
	err := s.Scan(&res.ID, &res.UserID, &res.VenueID, &res.DateStart, &dateEnd,
		&ts, &te, &res.EventType, &desc, &res.Headcount,
		&res.TotalPriceCents, &status, &res.CreatedAt, &res.UpdatedAt,
		&res.UserName, &res.VenueName)
	if err != nil {
		return model.Reservation{}, err
	}
	if dateEnd.Valid {
		d := dateEnd.Time
		res.DateEnd = &d
	}
	res.Description = nullableString(desc)
	res.TimeStart = booking.TimeOfDay(ts)
	res.TimeEnd = booking.TimeOfDay(te)
	res.Status = booking.Status(status)
	return res, nil
}

// dateArg renders a time as the DATE literal MySQL expects, dropping the
// time component so comparisons stay calendar-day based.
func dateArg(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func dateEndArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return dateArg(*t)
}
