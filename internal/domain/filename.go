package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// yearFileRe matches the data files DiscoverYears recognizes.
var yearFileRe = regexp.MustCompile(`^accident_(\d{4})\.csv(\.bz2|\.gz)?$`)

// BuildFilename returns the path of the data file for year under dataDir.
func BuildFilename(dataDir string, year int) string {
	return filepath.Join(dataDir, fmt.Sprintf("accident_%d.csv.bz2", year))
}

// ResolveYearFile returns the first existing data file for year, trying the
// .csv.bz2, .csv.gz and .csv variants in that order. When none exists it
// returns the BuildFilename path so the loader reports the canonical name.
func ResolveYearFile(dataDir string, year int) string {
	canonical := BuildFilename(dataDir, year)
	base := strings.TrimSuffix(canonical, ".bz2")
	for _, candidate := range []string{canonical, base + ".gz", base} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return canonical
}

// DiscoverYears lists the distinct years that have a data file in dataDir,
// ascending.
func DiscoverYears(dataDir string) ([]int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	seen := make(map[int]bool)
	years := []int{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := yearFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// ParseYears parses each value with ParseYear. Comma-separated values are
// split, so both ["2013", "2014"] and ["2013,2014"] are accepted.
func ParseYears(values []string) ([]int, error) {
	var years []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			y, err := ParseYear(part)
			if err != nil {
				return nil, err
			}
			years = append(years, y)
		}
	}
	return years, nil
}
