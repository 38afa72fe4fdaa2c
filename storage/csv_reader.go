package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"property-recommender/models"
	"property-recommender/utils"
)

// Catalog and activity log column names.
const (
	ColItemID      = "item_id"
	ColHasElevator = "has_elevator"
	ColRoomQty     = "room_qty"
	ColPropertyAge = "property_age"
	ColImageURL    = "imageurl"
)

// ErrMissingColumn is returned when a required column is absent from a CSV header.
var ErrMissingColumn = errors.New("missing required column")

// Snapshot is the immutable catalog + activity log pair loaded at startup.
// Nothing mutates it after LoadSnapshot returns.
type Snapshot struct {
	Catalog  []models.ListingRecord
	Activity []models.VisitEvent
}

// LoadSnapshot reads both CSV files. Each file is opened, parsed and closed
// before the function returns.
func LoadSnapshot(catalogPath, activityPath string, logger *utils.Logger) (*Snapshot, error) {
	catalog, err := loadFile(catalogPath, func(r io.Reader) ([]models.ListingRecord, error) {
		return ReadCatalog(r, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	activity, err := loadFile(activityPath, func(r io.Reader) ([]models.VisitEvent, error) {
		return ReadActivity(r, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}

	logger.Info("[storage] Loaded %d listings and %d visit events", len(catalog), len(activity))
	return &Snapshot{Catalog: catalog, Activity: activity}, nil
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return rows, nil
}

// ReadCatalog parses a property CSV. item_id is required; the other known
// columns are optional and, when missing, leave the field absent for every
// record. Unknown columns land in Attributes.
func ReadCatalog(r io.Reader, logger *utils.Logger) ([]models.ListingRecord, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	idIdx, ok := header[ColItemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColItemID)
	}
	for _, col := range []string{ColHasElevator, ColRoomQty, ColPropertyAge} {
		if _, ok := header[col]; !ok {
			logger.Warn("[storage] Catalog has no %q column, treating it as absent for all records", col)
		}
	}

	known := map[string]bool{
		ColItemID: true, ColHasElevator: true, ColRoomQty: true, ColPropertyAge: true, ColImageURL: true,
	}

	seen := make(map[int64]struct{}, len(rows))
	records := make([]models.ListingRecord, 0, len(rows))
	for line, row := range rows {
		id, err := parseID(cell(row, idIdx, true))
		if err != nil {
			logger.Warn("[storage] Skipping catalog row %d: %v", line+2, err)
			continue
		}
		if _, dup := seen[id]; dup {
			logger.Warn("[storage] Skipping catalog row %d: duplicate item_id %d", line+2, id)
			continue
		}
		seen[id] = struct{}{}

		rec := models.ListingRecord{
			ID:          id,
			HasElevator: models.Text(column(header, row, ColHasElevator)),
			RoomQty:     models.Text(column(header, row, ColRoomQty)),
			PropertyAge: models.Text(column(header, row, ColPropertyAge)),
			ImageURL:    models.Text(column(header, row, ColImageURL)).Value,
		}
		for name, idx := range header {
			if known[name] {
				continue
			}
			if v := cell(row, idx, true); v != "" {
				if rec.Attributes == nil {
					rec.Attributes = make(map[string]string)
				}
				rec.Attributes[name] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadActivity parses a user activity CSV; one row is one visit.
func ReadActivity(r io.Reader, logger *utils.Logger) ([]models.VisitEvent, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, err
	}

	idIdx, ok := header[ColItemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColItemID)
	}

	events := make([]models.VisitEvent, 0, len(rows))
	for line, row := range rows {
		id, err := parseID(cell(row, idIdx, true))
		if err != nil {
			logger.Warn("[storage] Skipping activity row %d: %v", line+2, err)
			continue
		}
		events = append(events, models.VisitEvent{ItemID: id})
	}
	return events, nil
}

func readAll(r io.Reader) (map[string]int, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, ColItemID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read rows: %w", err)
	}
	return header, rows, nil
}

func column(header map[string]int, row []string, name string) string {
	idx, ok := header[name]
	if !ok {
		return ""
	}
	return cell(row, idx, false)
}

func cell(row []string, idx int, trim bool) string {
	if idx >= len(row) {
		return ""
	}
	if trim {
		return strings.TrimSpace(row[idx])
	}
	return row[idx]
}

// parseID accepts integer identifiers, including float renderings such as "12.0".
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid item_id %q", s)
	}
	return int64(f), nil
}
