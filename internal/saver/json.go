package saver

import (
	"encoding/json"
	"os"

	"github.com/brettelliot/azul/internal/model"
)

// JSONSaver writes a JSON array of rows (indent).
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars model.Series, g model.Granularity, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toRecords(bars, g)); err != nil {
		return err
	}
	return f.Close()
}

func (JSONSaver) Load(path string) (model.Series, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	return fromRecords(recs)
}
