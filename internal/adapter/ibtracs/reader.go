package ibtracs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

// ISOTimeLayout is the ISO_TIME format used by IBTrACS.
const ISOTimeLayout = "2006-01-02 15:04:05"

// ReadOptions controls ReadTracks.
type ReadOptions struct {
	// SkipUnitsRow drops the second line of raw NCEI files, which holds units
	// instead of data.
	SkipUnitsRow bool
	// Seasons keeps only records whose SEASON lies in the inclusive range.
	// Nil keeps everything.
	Seasons *domain.SeasonRange
}

// trackRow is the CSV shape of a domain.TrackRecord before type coercion.
type trackRow struct {
	SID        string `csv:"SID"`
	Season     string `csv:"SEASON"`
	Number     string `csv:"NUMBER"`
	Name       string `csv:"NAME"`
	ISOTime    string `csv:"ISO_TIME"`
	Nature     string `csv:"NATURE"`
	Lat        string `csv:"LAT"`
	Lon        string `csv:"LON"`
	WMOWind    string `csv:"WMO_WIND"`
	WMOPres    string `csv:"WMO_PRES"`
	TrackType  string `csv:"TRACK_TYPE"`
	Dist2Land  string `csv:"DIST2LAND"`
	Landfall   string `csv:"LANDFALL"`
	IFlag      string `csv:"IFLAG"`
	StormSpeed string `csv:"STORM_SPEED"`
	StormDir   string `csv:"STORM_DIR"`
}

// ReadTracks parses an IBTrACS CSV. The header must name every column in
// domain.TrackColumns; other columns are ignored.
func ReadTracks(r io.Reader, opts ReadOptions) ([]domain.TrackRecord, error) {
	src := &trackSource{r: csv.NewReader(r), skipUnits: opts.SkipUnitsRow}

	var rows []trackRow
	if err := gocsv.UnmarshalCSV(src, &rows); err != nil {
		return nil, fmt.Errorf("read tracks: %w", err)
	}
	if src.err != nil {
		return nil, fmt.Errorf("read tracks: %w", src.err)
	}

	firstLine := 2
	if opts.SkipUnitsRow {
		firstLine = 3
	}

	records := make([]domain.TrackRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("read tracks: line %d: %w", firstLine+i, err)
		}
		records = append(records, rec)
	}

	if opts.Seasons != nil {
		records = domain.FilterSeasons(records, *opts.Seasons)
	}
	return records, nil
}

// ReadRawTracks reads a file as published by NCEI, skipping its units row.
func ReadRawTracks(r io.Reader, seasons *domain.SeasonRange) ([]domain.TrackRecord, error) {
	return ReadTracks(r, ReadOptions{SkipUnitsRow: true, Seasons: seasons})
}

// ReadGOESTracks reads a file produced by WriteGOESTracks, which has no units row.
func ReadGOESTracks(r io.Reader, seasons *domain.SeasonRange) ([]domain.TrackRecord, error) {
	return ReadTracks(r, ReadOptions{Seasons: seasons})
}

// ReadTracksFile opens path on fs and parses it with ReadTracks.
func ReadTracksFile(fs afero.Fs, path string, opts ReadOptions) ([]domain.TrackRecord, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tracks: %w", err)
	}
	defer f.Close()

	return ReadTracks(f, opts)
}

func (row trackRow) record() (domain.TrackRecord, error) {
	season, err := parseInt("SEASON", row.Season)
	if err != nil {
		return domain.TrackRecord{}, err
	}
	number, err := parseInt("NUMBER", row.Number)
	if err != nil {
		return domain.TrackRecord{}, err
	}
	isoTime, err := parseISOTime(row.ISOTime)
	if err != nil {
		return domain.TrackRecord{}, err
	}
	lat, err := parseFloat("LAT", row.Lat)
	if err != nil {
		return domain.TrackRecord{}, err
	}
	lon, err := parseFloat("LON", row.Lon)
	if err != nil {
		return domain.TrackRecord{}, err
	}

	return domain.TrackRecord{
		SID:        row.SID,
		Season:     season,
		Number:     number,
		Name:       row.Name,
		ISOTime:    isoTime,
		Nature:     row.Nature,
		Lat:        lat,
		Lon:        lon,
		WMOWind:    strings.TrimSpace(row.WMOWind),
		WMOPres:    strings.TrimSpace(row.WMOPres),
		TrackType:  row.TrackType,
		Dist2Land:  strings.TrimSpace(row.Dist2Land),
		Landfall:   strings.TrimSpace(row.Landfall),
		IFlag:      row.IFlag,
		StormSpeed: strings.TrimSpace(row.StormSpeed),
		StormDir:   strings.TrimSpace(row.StormDir),
	}, nil
}

func parseInt(column, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", column, s, err)
	}
	return v, nil
}

func parseFloat(column, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", column, s, err)
	}
	return v, nil
}

// parseISOTime accepts the IBTrACS layout and RFC 3339, both read as UTC.
func parseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(ISOTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ISO_TIME %q: %w", s, err)
	}
	return t.UTC(), nil
}

// trackSource feeds gocsv, validating the header and dropping the units row.
type trackSource struct {
	r         *csv.Reader
	skipUnits bool
	line      int
	err       error
}

func (s *trackSource) Read() ([]string, error) {
	record, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	s.line++

	switch {
	case s.line == 1:
		if err := checkHeader(record); err != nil {
			s.err = err
			return nil, err
		}
	case s.line == 2 && s.skipUnits:
		return s.Read()
	}
	return record, nil
}

func (s *trackSource) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := s.Read()
		if errors.Is(err, io.EOF) {
			if len(records) == 0 {
				return nil, errors.New("empty track file")
			}
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func checkHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	for _, col := range domain.TrackColumns {
		if _, ok := present[col]; !ok {
			return fmt.Errorf("header: missing column %q", col)
		}
	}
	return nil
}
