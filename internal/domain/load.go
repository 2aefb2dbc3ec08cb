package domain

import (
	"compress/bzip2"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/gzip"
)

// LoadRecords reads a FARS accident file into a record table. The path may
// point to a .csv, .csv.bz2 or .csv.gz file. It fails with ErrFileNotFound
// when the path does not exist and with ErrMissingColumns when a required
// column is absent. No filtering or projection is applied.
func LoadRecords(path string) (dataframe.DataFrame, error) {
	df, err := ReadRecords(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if err := RequireColumns(df); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load %s: %w", path, err)
	}
	return df, nil
}

// ReadRecords parses a data file without checking for required columns.
// Required columns that are present are still read with their declared types.
func ReadRecords(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataframe.DataFrame{}, fmt.Errorf("load %s: %w", path, ErrFileNotFound)
		}
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decompress(f, path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse %s: %w", path, err)
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		df = emptyRecords(records[0])
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(true),
			dataframe.WithTypes(requiredTypes),
		)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse %s: %w", path, df.Err)
	}
	return df, nil
}

// emptyRecords builds the 0-row table of a header-only file. Required
// columns keep their declared types; the rest are strings.
func emptyRecords(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		typ, ok := requiredTypes[name]
		if !ok {
			typ = series.String
		}
		cols[i] = series.New([]string{}, typ, name)
	}
	return dataframe.New(cols...)
}

// decompress wraps r according to the file extension.
func decompress(r io.Reader, path string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(r), nil
	case strings.HasSuffix(path, ".gz"):
		return gzip.NewReader(r)
	default:
		return r, nil
	}
}
