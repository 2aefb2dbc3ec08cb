// Package domain models NHTSA Fatality Analysis Reporting System (FARS)
// accident data.
//
// # Data Source
//
// FARS publishes one accident file per year. The files handled here are the
// CSV exports of the ACCIDENT table, named accident_<year>.csv.bz2 (a plain
// .csv or a .csv.gz is also accepted). One row is one fatal crash.
//
// # FARS Data Conventions
//
// Columns this package depends on:
//
//	MONTH     crash month, 1-12
//	STATE     state FIPS code, e.g. 1 = Alabama, 48 = Texas, 56 = Wyoming
//	LATITUDE  decimal degrees
//	LONGITUD  decimal degrees (sic, the column name is truncated in FARS)
//
// Every other column is kept as read, with its type inferred by the CSV
// reader.
//
// Unknown coordinates:
//
//	FARS records unknown positions with out-of-range sentinels instead of
//	leaving the field blank: 77.7777 / 777.7777 (not reported),
//	88.8888 / 888.8888 (not available), 99.9999 / 999.9999 (unknown).
//	Latitudes above 90 and longitudes above 900 are treated as missing.
//	The low latitude sentinels (77.7777, 88.8888) are valid coordinates on
//	paper and are kept.
//
// # Summaries
//
// A summary counts crashes per (year, MONTH) and pivots the years into
// columns. It always has twelve rows. A year that loaded but has no crash in
// a month gets a missing cell, not a zero. See [Summarize].
package domain
