package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// WriteCSV writes records to path as one header row plus one row per record.
// An empty record list still produces a header-only file.
func WriteCSV(records []model.PlaceRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(model.RecordHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(f.Close(), "export: close csv")
}
