// Package export serializes collected place records to local files. Each
// format writes independently: a failure in one format does not stop the
// others, and re-running with the same stem overwrites previous output.
package export

import (
	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// Formats selects which output files to produce.
type Formats struct {
	CSV  bool
	JSON bool
	XLSX bool
}

// WriteAll writes records to every enabled format under <stem>.<ext>.
// Returns the number of formats that failed; failures are logged per format.
func WriteAll(records []model.PlaceRecord, stem string, formats Formats) int {
	failed := 0

	write := func(ext string, fn func([]model.PlaceRecord, string) error) {
		path := stem + "." + ext
		if err := fn(records, path); err != nil {
			zap.L().Error("export: write failed", zap.String("path", path), zap.Error(err))
			failed++
			return
		}
		zap.L().Info("export: wrote file", zap.String("path", path), zap.Int("records", len(records)))
	}

	if formats.CSV {
		write("csv", WriteCSV)
	}
	if formats.JSON {
		write("json", WriteJSON)
	}
	if formats.XLSX {
		write("xlsx", WriteXLSX)
	}

	return failed
}
