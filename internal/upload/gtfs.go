package upload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/jamespfennell/gtfs"

	"busdash.astana.transit/internal/utils"
)

// gtfsColumns is the upload table written for a converted feed. "address" is
// optional for the route service and carries the stop name.
var gtfsColumns = []string{
	"route_id",
	"stop_id",
	"address",
	"latitude",
	"longitude",
	"scheduled_time",
	"dwell_time_in_seconds",
	"segment_length",
}

// ConvertGTFS turns a static GTFS zip into the CSV upload table. For every route
// the trip with the most stop times stands for the route. It returns the number
// of routes written.
func ConvertGTFS(feed []byte, w io.Writer) (int, error) {
	static, err := gtfs.ParseStatic(feed, gtfs.ParseStaticOptions{})
	if err != nil {
		return 0, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	representative := make(map[string]*gtfs.ScheduledTrip)
	for i := range static.Trips {
		trip := &static.Trips[i]
		if trip.Route == nil || len(trip.StopTimes) < 2 {
			continue
		}
		current, ok := representative[trip.Route.Id]
		if !ok || len(trip.StopTimes) > len(current.StopTimes) {
			representative[trip.Route.Id] = trip
		}
	}
	if len(representative) == 0 {
		return 0, errors.New("GTFS feed has no trips with at least two stops")
	}

	routeIDs := make([]string, 0, len(representative))
	for id := range representative {
		routeIDs = append(routeIDs, id)
	}
	sort.Strings(routeIDs)

	cw := csv.NewWriter(w)
	if err := cw.Write(gtfsColumns); err != nil {
		return 0, err
	}

	for _, routeID := range routeIDs {
		for _, record := range tripRecords(routeID, representative[routeID]) {
			if err := cw.Write(record); err != nil {
				return 0, err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(routeIDs), nil
}

func tripRecords(routeID string, trip *gtfs.ScheduledTrip) [][]string {
	stopTimes := make([]gtfs.ScheduledStopTime, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		if st.Stop == nil || st.Stop.Latitude == nil || st.Stop.Longitude == nil {
			continue
		}
		stopTimes = append(stopTimes, st)
	}
	sort.Slice(stopTimes, func(i, j int) bool {
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})

	records := make([][]string, 0, len(stopTimes))
	for i, st := range stopTimes {
		length := 0.0
		if i > 0 {
			prev := stopTimes[i-1].Stop
			length = utils.Haversine(*prev.Latitude, *prev.Longitude, *st.Stop.Latitude, *st.Stop.Longitude)
		}

		dwell := st.DepartureTime - st.ArrivalTime
		if dwell < 0 {
			dwell = 0
		}

		records = append(records, []string{
			routeID,
			st.Stop.Id,
			st.Stop.Name,
			strconv.FormatFloat(*st.Stop.Latitude, 'f', -1, 64),
			strconv.FormatFloat(*st.Stop.Longitude, 'f', -1, 64),
			formatServiceTime(st.ArrivalTime),
			strconv.Itoa(int(dwell / time.Second)),
			strconv.FormatFloat(math.Round(length), 'f', 0, 64),
		})
	}
	return records
}

// formatServiceTime renders a GTFS offset from service-day midnight as HH:MM:SS,
// wrapping times past midnight into the next day.
func formatServiceTime(d time.Duration) string {
	total := int(d/time.Second) % (24 * 3600)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
