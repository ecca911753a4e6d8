package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// WriteXLSX writes records to path as a single-sheet workbook with a header
// row plus one row per record.
func WriteXLSX(records []model.PlaceRecord, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Places")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.RecordHeader {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		for _, val := range r.Row() {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
