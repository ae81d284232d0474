/*
PURPOSE:
  Writes pricing records to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  Implementation-discovered:
  - Header once per file; appending to an existing file must not repeat it.
  - Money columns are rounded for humans, raw floats kept for machines.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Consumes: internal/model.Record

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use gocsv with an explicit row struct.
  - Sync() after every write (crash resilience).
  - Mutex-protected.

MAINTENANCE:
  - Update csvRow/toRow when Record changes.
*/

package output

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/Higerald/OptionPricing/internal/model"
)

type csvRow struct {
	ID            string  `csv:"id"`
	Timestamp     string  `csv:"timestamp"`
	OptionType    string  `csv:"option_type"`
	Strike        float64 `csv:"strike"`
	Spot          float64 `csv:"spot"`
	Volatility    float64 `csv:"volatility"`
	Rate          float64 `csv:"rate"`
	Expiry        float64 `csv:"expiry"`
	Generator     string  `csv:"generator"`
	Sampler       string  `csv:"sampler"`
	Seed          string  `csv:"seed"`
	Paths         int     `csv:"paths"`
	Price         float64 `csv:"price"`
	StandardError float64 `csv:"standard_error"`
	PriceDisplay  string  `csv:"price_display"`
	AnalyticPrice string  `csv:"analytic_price"`
	DurationS     string  `csv:"duration_s"`
	Error         string  `csv:"error"`
}

func toRow(r model.Record) csvRow {
	row := csvRow{
		ID:            r.ID,
		Timestamp:     r.Timestamp.Format(time.RFC3339),
		OptionType:    r.OptionType,
		Strike:        r.Strike,
		Spot:          r.Parameters.Spot,
		Volatility:    r.Parameters.Volatility,
		Rate:          r.Parameters.Rate,
		Expiry:        r.Parameters.Expiry,
		Generator:     r.Generator,
		Sampler:       r.Sampler,
		Seed:          strconv.FormatUint(r.Seed, 10),
		Paths:         r.Paths,
		Price:         r.Price,
		StandardError: r.StandardError,
		DurationS:     strconv.FormatFloat(r.Duration.Seconds(), 'f', 4, 64),
		Error:         r.Error,
	}
	if r.Error == "" {
		row.PriceDisplay = FormatMoney(r.Price)
	}
	if r.AnalyticPrice != nil {
		row.AnalyticPrice = Money(*r.AnalyticPrice).String()
	}
	return row
}

// CSVWriter handles writing records to a CSV file.
type CSVWriter struct {
	file          *os.File
	mu            sync.Mutex
	headerWritten bool
}

// NewCSVWriter opens path for appending. A header is written before the
// first record if the file is empty.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &CSVWriter{
		file:          f,
		headerWritten: info.Size() > 0,
	}, nil
}

// Write writes a single record to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	rows := []csvRow{toRow(r)}
	var err error
	if cw.headerWritten {
		err = gocsv.MarshalWithoutHeaders(&rows, cw.file)
	} else {
		err = gocsv.MarshalFile(&rows, cw.file)
	}
	if err != nil {
		return err
	}
	cw.headerWritten = true
	return cw.file.Sync()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	return cw.file.Close()
}
