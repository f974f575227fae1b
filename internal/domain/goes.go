package domain

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	DefaultBucket  = "noaa-goes16"
	DefaultProduct = "ABI-L1b-RadF"
	DefaultBand    = 3
)

// ErrNoScan means the archive holds no scan for the requested hour.
var ErrNoScan = errors.New("no scan found")

var (
	// ScanModeCutover is when the ABI switched from Mode 3 to Mode 6.
	ScanModeCutover = time.Date(2019, time.April, 2, 16, 0, 0, 0, time.UTC)

	// ArchiveStart is the first day the GOES-16 bucket carries ABI scans.
	ArchiveStart = time.Date(2017, time.February, 28, 0, 0, 0, 0, time.UTC)
)

// DayOfYear returns the 1-based day number of t within its year.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// ScanMode returns "M3" for times before ScanModeCutover and "M6" otherwise.
func ScanMode(t time.Time) string {
	if t.Before(ScanModeCutover) {
		return "M3"
	}
	return "M6"
}

// ScanPrefix builds the key prefix matching every scan of product and band
// that started within the UTC hour of t.
func ScanPrefix(product string, t time.Time, band int) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%d/%03d/%02d/OR_%s-%sC%02d",
		product, t.Year(), DayOfYear(t), t.Hour(), product, ScanMode(t), band)
}

// ObjectURL returns the public HTTPS URL of key in bucket.
func ObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// ScanName is the key's file name up to the first dot, e.g.
// "OR_ABI-L1b-RadF-M6C03_G16_s20191001600" for a ".nc" key.
func ScanName(key string) string {
	base := path.Base(key)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// PreviousHour returns the start of the last complete UTC hour.
func PreviousHour() time.Time {
	return Now().UTC().Truncate(time.Hour).Add(-time.Hour)
}
