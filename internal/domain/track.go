package domain

import (
	"sort"
	"time"
)

// TrackColumns are the IBTrACS columns kept from the full file, in output order.
var TrackColumns = []string{
	"SID", "SEASON", "NUMBER", "NAME", "ISO_TIME",
	"NATURE", "LAT", "LON", "WMO_WIND", "WMO_PRES", "TRACK_TYPE",
	"DIST2LAND", "LANDFALL", "IFLAG", "STORM_SPEED", "STORM_DIR",
}

// TrackRecord is one storm observation, identified by (SID, ISOTime).
// Columns IBTrACS leaves blank are carried as raw strings.
type TrackRecord struct {
	SID        string    `json:"sid"`
	Season     int       `json:"season"`
	Number     int       `json:"number"`
	Name       string    `json:"name"`
	ISOTime    time.Time `json:"iso_time"`
	Nature     string    `json:"nature"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	WMOWind    string    `json:"wmo_wind,omitempty"`
	WMOPres    string    `json:"wmo_pres,omitempty"`
	TrackType  string    `json:"track_type,omitempty"`
	Dist2Land  string    `json:"dist2land,omitempty"`
	Landfall   string    `json:"landfall,omitempty"`
	IFlag      string    `json:"iflag,omitempty"`
	StormSpeed string    `json:"storm_speed,omitempty"`
	StormDir   string    `json:"storm_dir,omitempty"`
}

// SeasonRange is an inclusive range of season years.
type SeasonRange struct {
	Start int
	End   int
}

// AllSeasons is the range used when no season bounds are given.
var AllSeasons = SeasonRange{Start: 0, End: 3000}

// Contains reports whether Start <= season <= End.
func (r SeasonRange) Contains(season int) bool {
	return season >= r.Start && season <= r.End
}

// FilterSeasons returns the records whose season lies in r, preserving order.
func FilterSeasons(records []TrackRecord, r SeasonRange) []TrackRecord {
	out := make([]TrackRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Season) {
			out = append(out, rec)
		}
	}
	return out
}

// GOES-16 full-disk footprint. The satellite sits at 75.2W; the usable disk
// extends about 81 degrees of great-circle arc from the sub-satellite point.
const (
	goesMaxLat = 81.3
	goesMinLon = -156.2
	goesMaxLon = 5.8
)

// WithinGOESFullDisk reports whether the observation falls inside the
// GOES-16 full-disk bounding box.
func WithinGOESFullDisk(rec TrackRecord) bool {
	if rec.Lat < -goesMaxLat || rec.Lat > goesMaxLat {
		return false
	}
	lon := rec.Lon
	if lon > 180 {
		lon -= 360
	}
	return lon >= goesMinLon && lon <= goesMaxLon
}

// ObservationHours returns the distinct UTC hours of the records that fall on
// or after ArchiveStart, in ascending order.
func ObservationHours(records []TrackRecord) []time.Time {
	seen := make(map[time.Time]struct{}, len(records))
	hours := make([]time.Time, 0, len(records))
	for _, rec := range records {
		h := rec.ISOTime.UTC().Truncate(time.Hour)
		if h.Before(ArchiveStart) {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })
	return hours
}
