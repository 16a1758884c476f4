package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Tab-separated fixtures shaped like the three production exports
const (
	AirlineLevelTSV = "carrier\toutbound_fare_family\tods\n" +
		"AA\tBasic Economy\t100\n" +
		"AA\tMain Cabin\t250\n" +
		"AA\tFirst\t40\n" +
		"BA\t\t70\n" +
		"BA\tEconomy Light\t30\n" +
		"DL\tBasic\t500\n"

	SourceLevelTSV = "carrier\tsource\toutbound_fare_family\tods\n" +
		"AA\tGDS\tBasic Economy\t60\n" +
		"AA\tNDC\tBasic Economy\t60\n" +
		"AA\tGDS\tMain Cabin\t100\n" +
		"BA\tNDC\tEconomy Light\t20\n" +
		"UA\t\tBasic Economy\t15\n"

	DetectionTSV = "airline\tsource\tidentified_basic_economy_brand\tall_detected_brands\tmin_price_inc\n" +
		"AA\tGDS\tBasic Economy\tBasic Economy,Main Cabin\t120.5\n" +
		"AA\tNDC\t\tMain Cabin\t99.0\n" +
		"AA\tWEB\tBasic\tBasic,Main Cabin,First\t99.0\n" +
		"UA\tNDC\tBasic Economy\tBasic Economy\tNaN\n" +
		"F9\t\tBasic\t\t45\n"
)

// DatasetDir writes the three fixture files into a temporary directory and returns it
func DatasetDir(t *testing.T) string {
	t.Helper()
	return WriteDatasetDir(t, AirlineLevelTSV, SourceLevelTSV, DetectionTSV)
}

// WriteDatasetDir writes the given file contents under their default names
func WriteDatasetDir(t *testing.T, airline, source, detection string) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"george_airline_level.csv":        airline,
		"george_airline_source_level.csv": source,
		"teo_airline_source.csv":          detection,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return dir
}
