package saver

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/brettelliot/azul/internal/model"
)

// CSVSaver writes the zipline csvdir layout (header: date,open,high,low,close,volume,dividend,split).
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars model.Series, g model.Granularity, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if err := w.Write(append([]string{"date"}, model.Columns...)); err != nil {
		return err
	}
	layout := g.DateLayout()
	for _, b := range bars {
		if err := w.Write([]string{
			b.Time.UTC().Format(layout),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			strconv.FormatInt(b.Volume, 10),
			floatStr(b.Dividend),
			floatStr(b.Split),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func (CSVSaver) Load(path string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.Columns) + 1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Series{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out model.Series
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		b, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func parseRow(row []string) (model.Bar, error) {
	var (
		b    model.Bar
		err  error
		errs []error
	)
	b.Time, err = parseDate(row[0])
	errs = append(errs, err)
	pf := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}
	b.Open, b.High, b.Low, b.Close = pf(row[1]), pf(row[2]), pf(row[3]), pf(row[4])
	b.Volume, err = strconv.ParseInt(row[5], 10, 64)
	errs = append(errs, err)
	b.Dividend, b.Split = pf(row[6]), pf(row[7])
	return b, errors.Join(errs...)
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
