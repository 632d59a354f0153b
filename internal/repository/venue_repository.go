package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hall-booking/internal/model"
)

// VenueRepo provides CRUD operations for venues.  Venue deletion is
// guarded: a venue that still has reservations cannot be removed.
type VenueRepo struct{ DB *sql.DB }

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{DB: db} }

const venueColumns = "id, name, location, description, capacity, day_rate_cents, image_url, equipment, is_available, created_at, updated_at"

// Create inserts a venue and populates the generated ID and timestamps on
// the provided record.  Duplicate names map to ErrNameExists.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO venues (name, location, description, capacity, day_rate_cents, image_url, equipment, is_available)
		 VALUES (?,?,?,?,?,?,?,?)`,
		v.Name, v.Location, v.Description, v.Capacity, v.DayRateCents, v.ImageURL, v.Equipment, v.IsAvailable)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM venues WHERE id=?", v.ID).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID fetches a venue by primary key.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	return scanVenue(r.DB.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id=? LIMIT 1", id))
}

// List returns a page of venues ordered by name along with the total
// count.  When availableOnly is set, unavailable venues are filtered out;
// public browsing uses that form.
func (r *VenueRepo) List(ctx context.Context, availableOnly bool, limit, offset int) ([]model.Venue, int64, error) {
	where := ""
	if availableOnly {
		where = " WHERE is_available = TRUE"
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM venues"+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+venueColumns+" FROM venues"+where+" ORDER BY name LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenueRows(rows)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, v)
	}
	return venues, total, rows.Err()
}

// Update overwrites the mutable fields of a venue.  Duplicate names map to
// ErrNameExists and missing venues to sql.ErrNoRows.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", v.ID).Scan(&exists); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE venues SET name=?, location=?, description=?, capacity=?, day_rate_cents=?, equipment=?, is_available=?
		 WHERE id=?`,
		v.Name, v.Location, v.Description, v.Capacity, v.DayRateCents, v.Equipment, v.IsAvailable, v.ID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrNameExists
	}
	return err
}

// SetAvailability flips the is_available flag.
func (r *VenueRepo) SetAvailability(ctx context.Context, id uint64, available bool) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", id).Scan(&exists); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE venues SET is_available=? WHERE id=?", available, id)
	return err
}

// SetImageURL stores the path of an uploaded venue photo.
func (r *VenueRepo) SetImageURL(ctx context.Context, id uint64, url string) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", id).Scan(&exists); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE venues SET image_url=? WHERE id=?", url, id)
	return err
}

// Delete removes a venue that has no reservations.  It returns
// ErrHasReservations when any reservation references the venue,
// regardless of status, and sql.ErrNoRows when the venue is missing.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	var exists int
	if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM venues WHERE id=?", id).Scan(&exists); err != nil {
		return err
	}
	var count int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE venue_id=?", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrHasReservations
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM venues WHERE id=?", id)
	return err
}

func scanVenue(row *sql.Row) (model.Venue, error) {
	var v model.Venue
	var desc, img, equip sql.NullString
	err := row.Scan(&v.ID, &v.Name, &v.Location, &desc, &v.Capacity, &v.DayRateCents,
		&img, &equip, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Venue{}, err
	}
	v.Description = nullableString(desc)
	v.ImageURL = nullableString(img)
	v.Equipment = nullableString(equip)
	return v, nil
}

func scanVenueRows(rows *sql.Rows) (model.Venue, error) {
	var v model.Venue
	var desc, img, equip sql.NullString
	err := rows.Scan(&v.ID, &v.Name, &v.Location, &desc, &v.Capacity, &v.DayRateCents,
		&img, &equip, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Venue{}, err
	}
	v.Description = nullableString(desc)
	v.ImageURL = nullableString(img)
	v.Equipment = nullableString(equip)
	return v, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	val := s.String
	return &val
}
