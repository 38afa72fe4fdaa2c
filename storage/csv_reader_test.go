package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"property-recommender/utils"
)

func TestReadCatalogFields(t *testing.T) {
	in := "item_id,has_elevator,room_qty,property_age,imageurl,address\n" +
		"1,True,2,new,https://img/1.jpg,10 Downing St\n" +
		"2,False,3.0,,,\n"

	recs, err := ReadCatalog(strings.NewReader(in), utils.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	first := recs[0]
	if first.ID != 1 || first.HasElevator.Value != "True" || !first.HasElevator.Valid {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.ImageURL != "https://img/1.jpg" {
		t.Errorf("ImageURL: got %q", first.ImageURL)
	}
	if first.Attributes["address"] != "10 Downing St" {
		t.Errorf("address attribute: got %q", first.Attributes["address"])
	}

	second := recs[1]
	if second.PropertyAge.Valid {
		t.Error("empty property_age should be absent")
	}
	if second.RoomQty.Value != "3.0" {
		t.Errorf("room_qty keeps its textual form: got %q", second.RoomQty.Value)
	}
	if second.ImageURL != "" {
		t.Errorf("empty imageurl should stay empty, got %q", second.ImageURL)
	}
}

func TestReadCatalogMissingOptionalColumns(t *testing.T) {
	in := "item_id,room_qty\n5,2\n"

	recs, err := ReadCatalog(strings.NewReader(in), utils.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].HasElevator.Valid || recs[0].PropertyAge.Valid {
		t.Errorf("missing columns must be absent: %+v", recs[0])
	}
}

func TestReadCatalogSkipsBadAndDuplicateIDs(t *testing.T) {
	in := "item_id,has_elevator\nabc,True\n7,True\n7,False\n8.0,False\n"

	recs, err := ReadCatalog(strings.NewReader(in), utils.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].ID != 7 || recs[0].HasElevator.Value != "True" {
		t.Errorf("first occurrence should win: %+v", recs[0])
	}
	if recs[1].ID != 8 {
		t.Errorf("float id should parse: got %d", recs[1].ID)
	}
}

func TestReadCatalogRequiresItemID(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("id,room_qty\n1,2\n"), utils.NewNopLogger())
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}

	_, err = ReadCatalog(strings.NewReader(""), utils.NewNopLogger())
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("empty file: expected ErrMissingColumn, got %v", err)
	}
}

func TestReadActivity(t *testing.T) {
	in := "user_id,item_id\n9,1\n9,1\n4,2\n4,\n"

	events, err := ReadActivity(strings.NewReader(in), utils.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadActivity: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].ItemID != 1 || events[1].ItemID != 1 || events[2].ItemID != 2 {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "property.csv")
	activity := filepath.Join(dir, "user_activity.csv")
	if err := os.WriteFile(catalog, []byte("item_id,has_elevator\n1,True\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(activity, []byte("item_id\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := LoadSnapshot(catalog, activity, utils.NewNopLogger())
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Catalog) != 1 || len(snap.Activity) != 1 {
		t.Errorf("unexpected snapshot sizes: %d/%d", len(snap.Catalog), len(snap.Activity))
	}

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.csv"), activity, utils.NewNopLogger()); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
