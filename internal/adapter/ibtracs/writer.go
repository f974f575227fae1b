package ibtracs

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/gocarina/gocsv"
)

// WriteTracks writes records as CSV with the domain.TrackColumns header and
// no units row.
func WriteTracks(w io.Writer, records []domain.TrackRecord) error {
	rows := make([]trackRow, len(records))
	for i, rec := range records {
		rows[i] = rowFromRecord(rec)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write tracks: %w", err)
	}
	return nil
}

// WriteGOESTracks writes the records inside the GOES-16 full-disk footprint
// and returns how many were written.
func WriteGOESTracks(w io.Writer, records []domain.TrackRecord) (int, error) {
	kept := make([]domain.TrackRecord, 0, len(records))
	for _, rec := range records {
		if domain.WithinGOESFullDisk(rec) {
			kept = append(kept, rec)
		}
	}
	return len(kept), WriteTracks(w, kept)
}

func rowFromRecord(rec domain.TrackRecord) trackRow {
	return trackRow{
		SID:        rec.SID,
		Season:     strconv.Itoa(rec.Season),
		Number:     strconv.Itoa(rec.Number),
		Name:       rec.Name,
		ISOTime:    rec.ISOTime.UTC().Format(ISOTimeLayout),
		Nature:     rec.Nature,
		Lat:        strconv.FormatFloat(rec.Lat, 'f', -1, 64),
		Lon:        strconv.FormatFloat(rec.Lon, 'f', -1, 64),
		WMOWind:    rec.WMOWind,
		WMOPres:    rec.WMOPres,
		TrackType:  rec.TrackType,
		Dist2Land:  rec.Dist2Land,
		Landfall:   rec.Landfall,
		IFlag:      rec.IFlag,
		StormSpeed: rec.StormSpeed,
		StormDir:   rec.StormDir,
	}
}
