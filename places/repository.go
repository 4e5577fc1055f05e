// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nahuelc/geolink/spatial"
)

// Repository handles persistence of saved places.
type Repository interface {
	// CreateSchema creates the places tables
	CreateSchema() error

	// Save inserts a place, or updates it when it already has an ID
	Save(place *Place) error

	// Get returns a place by ID, including its time windows
	Get(id int) (*Place, error)

	// List returns places, optionally filtered by name and visibility
	List(name, visibility *string, limit, offset int) ([]*Place, error)

	// Delete removes a place and its time windows
	Delete(id int) error

	// BulkInsert inserts a slice of places in one transaction
	BulkInsert(placeList []*Place) error

	// Count returns the total number of places
	Count() (int, error)

	// NearestWithin returns the closest stored place within radius
	// meters of the point, or nil when there is none
	NearestWithin(point *spatial.Point, radius float64) (*Place, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlPlaceRepository struct {
	db *sql.DB
}

// NewRepository creates a new place repository.
func NewRepository(db *sql.DB) Repository {
	return &sqlPlaceRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlPlaceRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlPlaceRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS places_seq START 1;

		CREATE TABLE IF NOT EXISTS places (
			id INTEGER PRIMARY KEY DEFAULT nextval('places_seq'),
			emoji VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			visibility VARCHAR NOT NULL,
			notes TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);

		CREATE TABLE IF NOT EXISTS place_windows (
			place_id INTEGER NOT NULL,
			weekday TINYINT NOT NULL,
			start_time VARCHAR NOT NULL,
			end_time VARCHAR NOT NULL
		);
	`)

	return err
}

func (r *sqlPlaceRepository) Save(place *Place) error {
	if place != nil {
		place.Name = sanitizeName(place.Name)
	}

	if err := validatePlace(place); err != nil {
		return err
	}

	if err := place.computeH3(); err != nil {
		return err
	}

	place.UpdatedAt = time.Now()

	if place.ID == 0 {
		place.CreatedAt = place.UpdatedAt

		err := r.db.QueryRow(`
			INSERT INTO places(
				emoji, name, point, visibility, notes, created_at, updated_at,
				h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
			)
			VALUES (?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`,
			place.Emoji,
			place.Name,
			place.Point.Lng,
			place.Point.Lat,
			place.Visibility,
			place.Notes,
			place.CreatedAt,
			place.UpdatedAt,
			place.H3Res1,
			place.H3Res2,
			place.H3Res3,
			place.H3Res4,
			place.H3Res5,
			place.H3Res6,
			place.H3Res7,
			place.H3Res8,
		).Scan(&place.ID)
		if err != nil {
			return err
		}

		return r.saveWindows(place)
	}

	result, err := r.db.Exec(`
		UPDATE places
		SET emoji = ?, name = ?, point = ST_Point(?, ?), visibility = ?,
		    notes = ?, updated_at = ?,
			h3_res1 = ?, h3_res2 = ?, h3_res3 = ?, h3_res4 = ?, h3_res5 = ?, h3_res6 = ?, h3_res7 = ?, h3_res8 = ?
		WHERE id = ?
	`,
		place.Emoji,
		place.Name,
		place.Point.Lng,
		place.Point.Lat,
		place.Visibility,
		place.Notes,
		place.UpdatedAt,
		place.H3Res1,
		place.H3Res2,
		place.H3Res3,
		place.H3Res4,
		place.H3Res5,
		place.H3Res6,
		place.H3Res7,
		place.H3Res8,
		place.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("place %d does not exist", place.ID)
	}

	return r.saveWindows(place)
}

// saveWindows replaces the windows of a place with the in-memory set.
func (r *sqlPlaceRepository) saveWindows(place *Place) error {
	if _, err := r.db.Exec(`DELETE FROM place_windows WHERE place_id = ?`, place.ID); err != nil {
		return err
	}

	for _, w := range place.Windows {
		_, err := r.db.Exec(`
			INSERT INTO place_windows(place_id, weekday, start_time, end_time)
			VALUES (?, ?, ?, ?)
		`, place.ID, int(w.Weekday), w.Start, w.End)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *sqlPlaceRepository) BulkInsert(placeList []*Place) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO places(
			emoji, name, point, visibility, notes, created_at, updated_at,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		)
		VALUES (?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	now := time.Now()

	for _, p := range placeList {
		if err = validatePlace(p); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}

		if err = p.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}

		p.CreatedAt = now
		p.UpdatedAt = now

		_, err = stmt.Exec(
			p.Emoji,
			p.Name,
			p.Point.Lng,
			p.Point.Lat,
			p.Visibility,
			p.Notes,
			p.CreatedAt,
			p.UpdatedAt,
			p.H3Res1,
			p.H3Res2,
			p.H3Res3,
			p.H3Res4,
			p.H3Res5,
			p.H3Res6,
			p.H3Res7,
			p.H3Res8,
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func (r *sqlPlaceRepository) Get(id int) (*Place, error) {
	place := &Place{Point: &spatial.Point{}}

	var h3Res1, h3Res2, h3Res3, h3Res4, h3Res5, h3Res6, h3Res7, h3Res8 sql.NullInt64

	err := r.db.QueryRow(`
		SELECT id, emoji, name, point, visibility, notes, created_at, updated_at,
			   h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		FROM places
		WHERE id = ?
	`, id).Scan(
		&place.ID,
		&place.Emoji,
		&place.Name,
		&place.Point,
		&place.Visibility,
		&place.Notes,
		&place.CreatedAt,
		&place.UpdatedAt,
		&h3Res1,
		&h3Res2,
		&h3Res3,
		&h3Res4,
		&h3Res5,
		&h3Res6,
		&h3Res7,
		&h3Res8,
	)
	if err != nil {
		return nil, err
	}

	if h3Res1.Valid {
		place.H3Res1 = h3Res1.Int64
	}

	if h3Res2.Valid {
		place.H3Res2 = h3Res2.Int64
	}

	if h3Res3.Valid {
		place.H3Res3 = h3Res3.Int64
	}

	if h3Res4.Valid {
		place.H3Res4 = h3Res4.Int64
	}

	if h3Res5.Valid {
		place.H3Res5 = h3Res5.Int64
	}

	if h3Res6.Valid {
		place.H3Res6 = h3Res6.Int64
	}

	if h3Res7.Valid {
		place.H3Res7 = h3Res7.Int64
	}

	if h3Res8.Valid {
		place.H3Res8 = h3Res8.Int64
	}

	if err := r.loadWindows(place); err != nil {
		return nil, err
	}

	return place, nil
}

func (r *sqlPlaceRepository) loadWindows(place *Place) error {
	rows, err := r.db.Query(`
		SELECT weekday, start_time, end_time
		FROM place_windows
		WHERE place_id = ?
		ORDER BY weekday, start_time
	`, place.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w TimeWindow

		var weekday int

		if err := rows.Scan(&weekday, &w.Start, &w.End); err != nil {
			return err
		}

		w.Weekday = time.Weekday(weekday)
		place.Windows = append(place.Windows, w)
	}

	return rows.Err()
}

func (r *sqlPlaceRepository) List(name, visibility *string, limit, offset int) ([]*Place, error) {
	query := `
		SELECT id, emoji, name, point, visibility, notes, created_at, updated_at
		FROM places
		WHERE 1 = 1
	`

	var args []any

	if name != nil {
		query += ` AND name LIKE ?`

		args = append(args, "%"+*name+"%")
	}

	if visibility != nil {
		query += ` AND visibility = ?`

		args = append(args, *visibility)
	}

	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Place

	for rows.Next() {
		place := &Place{Point: &spatial.Point{}}

		if err := rows.Scan(
			&place.ID,
			&place.Emoji,
			&place.Name,
			&place.Point,
			&place.Visibility,
			&place.Notes,
			&place.CreatedAt,
			&place.UpdatedAt,
		); err != nil {
			return nil, err
		}

		out = append(out, place)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, place := range out {
		if err := r.loadWindows(place); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *sqlPlaceRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM place_windows WHERE place_id = ?`, id); err != nil {
		return err
	}

	result, err := r.db.Exec(`DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("place %d does not exist", id)
	}

	return nil
}

func (r *sqlPlaceRepository) Count() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT COUNT(*) FROM places`).Scan(&count)

	return count, err
}

func (r *sqlPlaceRepository) NearestWithin(point *spatial.Point, radius float64) (*Place, error) {
	if point == nil {
		return nil, errors.New("point can't be null")
	}

	// Candidates come from a generous bounding box; the exact check is
	// done with the haversine distance in Go.
	const degreeMargin = 0.1

	rows, err := r.db.Query(`
		SELECT id, emoji, name, point, visibility, notes, created_at, updated_at
		FROM places
		WHERE ST_Y(point) BETWEEN ? AND ?
		  AND ST_X(point) BETWEEN ? AND ?
	`,
		point.Lat-degreeMargin, point.Lat+degreeMargin,
		point.Lng-degreeMargin, point.Lng+degreeMargin,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var best *Place

	bestDistance := radius

	for rows.Next() {
		place := &Place{Point: &spatial.Point{}}

		if err := rows.Scan(
			&place.ID,
			&place.Emoji,
			&place.Name,
			&place.Point,
			&place.Visibility,
			&place.Notes,
			&place.CreatedAt,
			&place.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if d := place.Point.HaversineDistance(point); d <= bestDistance {
			bestDistance = d
			best = place
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return best, nil
}
