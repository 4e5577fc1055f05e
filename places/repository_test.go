// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/nahuelc/geolink/spatial"
)

func setupTestDB(t *testing.T) (*sql.DB, Repository) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

func TestCreateSchema(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	for _, table := range []string{"places", "place_windows"} {
		var tableName string

		err := db.QueryRow(
			"SELECT table_name FROM information_schema.tables WHERE table_name = ?", table,
		).Scan(&tableName)
		if err != nil {
			t.Fatalf("Table %s not created: %v", table, err)
		}
	}
}

func TestSaveAndGet(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	lat := 47.69084
	lng := -122.37089

	place := &Place{
		Emoji:      "🚲",
		Name:       "JRA Bike Shop",
		Point:      &spatial.Point{Lat: lat, Lng: lng},
		Visibility: VisibilityPrivate,
		Notes:      "Imported from a shared link",
		Windows: []TimeWindow{
			{Weekday: time.Monday, Start: "09:00", End: "18:00"},
			{Weekday: time.Saturday, Start: "10:00", End: "14:00"},
		},
	}

	if err := repo.Save(place); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if place.ID == 0 {
		t.Fatal("Save() did not assign an ID")
	}

	retrieved, err := repo.Get(place.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if retrieved.Name != place.Name {
		t.Errorf("Name = %s, want %s", retrieved.Name, place.Name)
	}

	if retrieved.Emoji != place.Emoji {
		t.Errorf("Emoji = %s, want %s", retrieved.Emoji, place.Emoji)
	}

	if retrieved.Point.Lat != lat {
		t.Errorf("Latitude = %f, want %f", retrieved.Point.Lat, lat)
	}

	if retrieved.Point.Lng != lng {
		t.Errorf("Longitude = %f, want %f", retrieved.Point.Lng, lng)
	}

	if retrieved.Visibility != VisibilityPrivate {
		t.Errorf("Visibility = %s, want %s", retrieved.Visibility, VisibilityPrivate)
	}

	if len(retrieved.Windows) != 2 {
		t.Fatalf("Windows = %v, want 2 entries", retrieved.Windows)
	}

	if retrieved.Windows[0].Weekday != time.Monday || retrieved.Windows[0].Start != "09:00" {
		t.Errorf("first window = %+v", retrieved.Windows[0])
	}
}

func TestSaveUpdates(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	place := &Place{
		Name:       "Old Name",
		Point:      &spatial.Point{Lat: 1, Lng: 2},
		Visibility: VisibilityPrivate,
	}

	if err := repo.Save(place); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	place.Name = "New Name"
	place.Point = &spatial.Point{Lat: 3, Lng: 4}
	place.Visibility = VisibilityPublic
	place.Windows = []TimeWindow{{Weekday: time.Friday, Start: "20:00", End: "23:00"}}

	if err := repo.Save(place); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	retrieved, err := repo.Get(place.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if retrieved.Name != "New Name" {
		t.Errorf("Name = %s, want New Name", retrieved.Name)
	}

	if retrieved.Point.Lat != 3 || retrieved.Point.Lng != 4 {
		t.Errorf("Point = %v, want (3, 4)", retrieved.Point)
	}

	if retrieved.Visibility != VisibilityPublic {
		t.Errorf("Visibility = %s, want %s", retrieved.Visibility, VisibilityPublic)
	}

	if len(retrieved.Windows) != 1 {
		t.Errorf("Windows = %v, want the replaced set", retrieved.Windows)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	err := repo.Save(&Place{Name: "", Point: &spatial.Point{}})
	if err == nil {
		t.Error("Save() accepted a place without a name")
	}

	err = repo.Save(&Place{Name: "Test", Point: &spatial.Point{Lat: 100}})
	if err == nil {
		t.Error("Save() accepted out of range coordinates")
	}
}

func TestUpdateMissingPlace(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	err := repo.Save(&Place{
		ID:    4242,
		Name:  "Ghost",
		Point: &spatial.Point{Lat: 1, Lng: 1},
	})
	if err == nil {
		t.Error("Save() accepted an update of a non-existent place")
	}
}

func TestList(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	seed := []*Place{
		{Name: "Coffee North", Point: &spatial.Point{Lat: 1, Lng: 1}, Visibility: VisibilityPrivate},
		{Name: "Coffee South", Point: &spatial.Point{Lat: 2, Lng: 2}, Visibility: VisibilityPublic},
		{Name: "Bakery", Point: &spatial.Point{Lat: 3, Lng: 3}, Visibility: VisibilityPublic},
	}

	if err := repo.BulkInsert(seed); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	all, err := repo.List(nil, nil, 100, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("List() = %d places, want 3", len(all))
	}

	name := "Coffee"

	coffee, err := repo.List(&name, nil, 100, 0)
	if err != nil {
		t.Fatalf("List(name) error = %v", err)
	}

	if len(coffee) != 2 {
		t.Errorf("List(name=Coffee) = %d places, want 2", len(coffee))
	}

	visibility := VisibilityPublic

	public, err := repo.List(nil, &visibility, 100, 0)
	if err != nil {
		t.Fatalf("List(visibility) error = %v", err)
	}

	if len(public) != 2 {
		t.Errorf("List(visibility=public) = %d places, want 2", len(public))
	}

	page, err := repo.List(nil, nil, 2, 2)
	if err != nil {
		t.Fatalf("List(limit, offset) error = %v", err)
	}

	if len(page) != 1 {
		t.Errorf("List(limit=2, offset=2) = %d places, want 1", len(page))
	}
}

func TestDelete(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	place := &Place{
		Name:  "Short lived",
		Point: &spatial.Point{Lat: 1, Lng: 1},
		Windows: []TimeWindow{
			{Weekday: time.Monday, Start: "09:00", End: "10:00"},
		},
	}

	if err := repo.Save(place); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(place.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Get(place.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Get() after delete error = %v, want sql.ErrNoRows", err)
	}

	var windows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM place_windows`).Scan(&windows); err != nil {
		t.Fatalf("counting windows: %v", err)
	}

	if windows != 0 {
		t.Errorf("windows left after delete = %d, want 0", windows)
	}

	if err := repo.Delete(place.ID); err == nil {
		t.Error("Delete() of a missing place did not fail")
	}
}

func TestNearestWithin(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	shop := &Place{Name: "bike shop", Point: &spatial.Point{Lat: 47.69084, Lng: -122.37089}}
	market := &Place{Name: "market", Point: &spatial.Point{Lat: 47.60870, Lng: -122.34050}}

	if err := repo.BulkInsert([]*Place{shop, market}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	// ~15m from the shop
	near, err := repo.NearestWithin(&spatial.Point{Lat: 47.69097, Lng: -122.37089}, 25)
	if err != nil {
		t.Fatalf("NearestWithin() error = %v", err)
	}

	if near == nil || near.Name != "bike shop" {
		t.Errorf("NearestWithin() = %+v, want the bike shop", near)
	}

	// nothing within 25m of this point
	far, err := repo.NearestWithin(&spatial.Point{Lat: 47.65000, Lng: -122.35000}, 25)
	if err != nil {
		t.Fatalf("NearestWithin() error = %v", err)
	}

	if far != nil {
		t.Errorf("NearestWithin() = %+v, want nil", far)
	}
}
