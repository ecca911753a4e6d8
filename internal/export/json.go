package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// WriteJSON writes records to path as a 2-space-indented array of objects.
// An empty record list produces "[]".
func WriteJSON(records []model.PlaceRecord, path string) error {
	if records == nil {
		records = []model.PlaceRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal json")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "export: write json")
	}
	return nil
}

// ReadJSON reads a record list previously written by WriteJSON.
func ReadJSON(path string) ([]model.PlaceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read json")
	}

	var records []model.PlaceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "export: unmarshal json")
	}
	return records, nil
}
