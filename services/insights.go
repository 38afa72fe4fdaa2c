package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"property-recommender/models"
	"property-recommender/storage"
	"property-recommender/utils"
)

const topVisitedLimit = 5

// InsightService builds the popularity report printed by the stats command.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises the catalog against its activity log.
func (s *InsightService) Generate(snap *storage.Snapshot) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByRooms: make(map[string]int),
	}

	idx := BuildPopularityIndex(snap.Activity)
	report.TotalListings = len(snap.Catalog)
	report.TotalVisits = len(snap.Activity)

	inCatalog := make(map[int64]struct{}, len(snap.Catalog))
	for _, rec := range snap.Catalog {
		inCatalog[rec.ID] = struct{}{}
		if rec.RoomQty.Valid {
			report.ListingsByRooms[rec.RoomQty.Value]++
		}
	}
	for id, n := range idx {
		if _, ok := inCatalog[id]; !ok {
			report.OrphanVisits += n
		}
	}

	popular := MostVisited(snap.Catalog, idx)
	report.VisitedListings = len(popular)
	if len(popular) > topVisitedLimit {
		popular = popular[:topVisitedLimit]
	}
	report.TopVisited = popular

	if report.OrphanVisits > 0 {
		s.logger.Warn("[insights] %d visit events reference listings missing from the catalog", report.OrphanVisits)
	}
	return report
}

// Print writes a human-readable rendering of r to w.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 CATALOG POPULARITY INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings in catalog    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Listings with visits   : \033[1m%d\033[0m\n", r.VisitedListings)
	fmt.Fprintf(w, "  Visit events           : \033[1m%d\033[0m\n", r.TotalVisits)
	fmt.Fprintf(w, "  Orphan visit events    : \033[1m%d\033[0m\n\n", r.OrphanVisits)

	fmt.Fprintf(w, "\033[1;33m  Top %d Most Visited\033[0m\n", topVisitedLimit)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopVisited) == 0 {
		fmt.Fprintf(w, "  No properties found.\n")
	} else {
		for i, l := range r.TopVisited {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m item %-12d rooms %-8s \033[1;32m%d visits\033[0m\n",
				i+1, l.ID, truncate(l.RoomQty.Value, 8), l.VisitCount)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Room Count\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.ListingsByRooms) == 0 {
		fmt.Fprintf(w, "  No room data\n")
	} else {
		type roomCount struct {
			rooms string
			count int
		}
		var rows []roomCount
		for rooms, cnt := range r.ListingsByRooms {
			rows = append(rows, roomCount{rooms, cnt})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].count != rows[j].count {
				return rows[i].count > rows[j].count
			}
			return rows[i].rooms < rows[j].rooms
		})
		for _, rc := range rows {
			bar := strings.Repeat("█", min(rc.count, 40))
			fmt.Fprintf(w, "  %-10s %s (%d)\n", truncate(rc.rooms, 10), bar, rc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to at most max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
