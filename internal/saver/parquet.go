package saver

import (
	"github.com/parquet-go/parquet-go"

	"github.com/brettelliot/azul/internal/model"
)

// ParquetSaver writes one Parquet file per symbol.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars model.Series, g model.Granularity, path string) error {
	return parquet.WriteFile(path, toRecords(bars, g))
}

func (ParquetSaver) Load(path string) (model.Series, error) {
	recs, err := parquet.ReadFile[record](path)
	if err != nil {
		return nil, err
	}
	return fromRecords(recs)
}
