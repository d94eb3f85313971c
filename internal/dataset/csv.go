// Package dataset loads historical daily bars from CSV files and can
// synthesize deterministic series for demos and tests.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openquant/strategist/internal/core"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// LoadCSV reads daily bars from a CSV file with a
// Date,Open,High,Low,Close,Volume header. Bars are validated before being
// returned.
func LoadCSV(path string) ([]core.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses bars from CSV content.
func ReadCSV(r io.Reader) ([]core.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidBars, fmt.Errorf("reading header: %w", err))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var bars []core.Bar
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidBars, fmt.Errorf("line %d: %w", line, err))
		}

		bar, err := parseRecord(record)
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidBars, fmt.Errorf("line %d: %w", line, err))
		}
		bars = append(bars, bar)
	}

	if err := core.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func checkHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return core.WrapError(core.ErrInvalidBars,
			fmt.Errorf("header has %d columns, want %d", len(header), len(csvHeader)))
	}
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return core.WrapError(core.ErrInvalidBars,
				fmt.Errorf("header column %d is %q, want %q", i, header[i], want))
		}
	}
	return nil
}

func parseRecord(record []string) (core.Bar, error) {
	if len(record) != len(csvHeader) {
		return core.Bar{}, fmt.Errorf("record has %d fields, want %d", len(record), len(csvHeader))
	}

	date, err := time.Parse(dateLayout, record[0])
	if err != nil {
		return core.Bar{}, fmt.Errorf("bad date %q: %w", record[0], err)
	}

	vals := make([]float64, 5)
	for i := 1; i < len(record); i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return core.Bar{}, fmt.Errorf("bad %s %q: %w", strings.ToLower(csvHeader[i]), record[i], err)
		}
		vals[i-1] = v
	}

	return core.Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: int64(vals[4]),
	}, nil
}
