package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"busdash.astana.transit/internal/models"
)

// Filename is the name offered to the browser for the export download.
const Filename = "all_routes.csv"

// Header is the fixed column order of the export.
var Header = []string{
	"route_id",
	"route_name",
	"stop_id",
	"stop_name",
	"latitude",
	"longitude",
	"sequence",
	"scheduled_time",
}

// WriteRoutesCSV writes the header and one row per (route, stop) pair. A stop
// without a sequence number gets its 1-based position in the route.
func WriteRoutesCSV(w io.Writer, routes []models.Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, route := range routes {
		for i, stop := range route.Stops {
			sequence := stop.Sequence
			if sequence == 0 {
				sequence = i + 1
			}
			record := []string{
				route.ID,
				route.Name,
				stop.ID,
				stop.Name,
				strconv.FormatFloat(stop.Coordinates.Lat(), 'f', -1, 64),
				strconv.FormatFloat(stop.Coordinates.Lng(), 'f', -1, 64),
				strconv.Itoa(sequence),
				stop.PredictedArrivalTime,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write csv row for route %s stop %s: %w", route.ID, stop.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// CountRows returns the number of data rows WriteRoutesCSV produces.
func CountRows(routes []models.Route) int {
	total := 0
	for _, route := range routes {
		total += len(route.Stops)
	}
	return total
}
