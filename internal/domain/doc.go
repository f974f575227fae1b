// Package domain models tropical-cyclone track observations and the GOES-16
// imagery archive layout they are matched against.
//
// # Track Data Source
//
// Track observations come from IBTrACS (International Best Track Archive for
// Climate Stewardship) v04r00, published by NCEI as one CSV per basin:
//
//	https://www.ncei.noaa.gov/data/international-best-track-archive-for-climate-stewardship-ibtracs/v04r00/access/csv/ibtracs.<BASIN>.list.v04r00.csv
//
// Basin codes: NA (North Atlantic), EP, WP, NI, SI, SP, SA, plus ALL, ACTIVE and
// last3years. The first line is the header, the second a units row
// ("Year", "degrees_north", "kts", ...) that is not data. Files produced by the
// GOES footprint filter are written without the units row.
//
// Column conventions:
//
//	SID        storm identifier, e.g. "2005236N23285" (Katrina)
//	SEASON     year of the storm season (integer)
//	NUMBER     storm number within the season (integer)
//	ISO_TIME   "YYYY-MM-DD HH:MM:SS" in UTC, normally 3-hourly
//	LAT, LON   degrees north / east; western longitudes are negative
//	WMO_WIND   knots, blank when the agency did not report it
//	WMO_PRES   millibars, blank when not reported
//
// Only a subset of the ~160 columns is kept (see [TrackColumns]). Blank values
// in IBTrACS are a single space, so the unconverted columns are kept verbatim.
//
// # Imagery Archive
//
// GOES-16 ABI data lives in the public "noaa-goes16" S3 bucket. Keys are
// organized as:
//
//	<product>/<year>/<day-of-year>/<hour>/OR_<product>-<mode>C<band>_G16_s<start>_e<end>_c<created>.nc
//
// e.g. "ABI-L1b-RadF/2019/100/16/OR_ABI-L1b-RadF-M6C03_G16_s20191001600...nc".
// Day of year and hour are zero padded to 3 and 2 digits, band to 2 digits.
//
// Scan mode:
//
//	The ABI operated in Mode 3 (full disk every 15 minutes) until
//	2019-04-02 16:00 UTC, then switched to Mode 6 (every 10 minutes).
//	The mode code is part of the key, so a prefix must use "M3" before the
//	cutover and "M6" on or after it. See [ScanMode].
//
// The archive starts on 2017-02-28; observation hours earlier than
// [ArchiveStart] have no imagery.
//
// Files are NetCDF-4, which is an HDF5 container.
package domain
