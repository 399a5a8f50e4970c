// Package mta reads and writes the MTA turnstile dataset files consumed and
// produced by the ridership pipeline.
package mta

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/faregate/faregate/pkg/ridership"
)

// ErrUnexpectedColumns is returned when a file's header row does not match
// the turnstile dataset column set.
var ErrUnexpectedColumns = errors.New("mta: file does not have the turnstile dataset columns")

var turnstileColumns = []string{
	"C/A", "UNIT", "SCP", "STATION", "LINENAME", "DIVISION",
	"DATE", "TIME", "DESC", "ENTRIES", "EXITS",
}

type turnstileRow struct {
	ControlArea string `csv:"C/A"`
	Unit        string `csv:"UNIT"`
	SCP         string `csv:"SCP"`
	Station     string `csv:"STATION"`
	LineName    string `csv:"LINENAME"`
	Division    string `csv:"DIVISION"`
	Date        string `csv:"DATE"`
	Time        string `csv:"TIME"`
	Description string `csv:"DESC"`
	Entries     string `csv:"ENTRIES"`
	Exits       string `csv:"EXITS"`
}

func setupCSVReader() {
	// Tolerate rows with missing columns, the normalizer drops them later
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})
}

// ParseTurnstileFile reads one weekly turnstile CSV file into raw readings.
// The header row is checked against the known column set; the published
// files pad the last header cell with trailing spaces, so cells are trimmed
// before comparison.
func ParseTurnstileFile(reader io.Reader) ([]ridership.RawReading, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("mta: reading turnstile file: %w", err)
	}

	body, err = rewriteHeader(body)
	if err != nil {
		return nil, err
	}

	setupCSVReader()

	var rows []turnstileRow
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, fmt.Errorf("mta: parsing turnstile file: %w", err)
	}

	readings := make([]ridership.RawReading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, ridership.RawReading{
			ControlArea: row.ControlArea,
			Unit:        row.Unit,
			SCP:         row.SCP,
			Station:     row.Station,
			LineName:    row.LineName,
			Division:    row.Division,
			Date:        row.Date,
			Time:        row.Time,
			Description: row.Description,
			Entries:     row.Entries,
			Exits:       row.Exits,
		})
	}

	return readings, nil
}

// ParseTurnstileFiles reads and concatenates multiple weekly files, in the
// order given.
func ParseTurnstileFiles(paths []string) ([]ridership.RawReading, error) {
	var readings []ridership.RawReading

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("mta: opening %s: %w", path, err)
		}

		fileReadings, err := ParseTurnstileFile(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("mta: %s: %w", path, err)
		}

		log.Info().Str("file", path).Int("readings", len(fileReadings)).Msg("Loaded turnstile file")
		readings = append(readings, fileReadings...)
	}

	return readings, nil
}

// rewriteHeader trims the header cells, verifies them against the expected
// column set and returns the body with the cleaned header in place.
func rewriteHeader(body []byte) ([]byte, error) {
	end := bytes.IndexByte(body, '\n')
	if end < 0 {
		end = len(body)
	}

	headerLine := strings.TrimRight(string(body[:end]), "\r")
	header, err := csv.NewReader(strings.NewReader(headerLine)).Read()
	if err != nil {
		return nil, fmt.Errorf("mta: parsing header row: %w", err)
	}

	if len(header) != len(turnstileColumns) {
		return nil, fmt.Errorf("%w: got %d columns", ErrUnexpectedColumns, len(header))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if header[i] != turnstileColumns[i] {
			return nil, fmt.Errorf("%w: column %d is %q", ErrUnexpectedColumns, i, header[i])
		}
	}

	var rest []byte
	if end < len(body) {
		rest = body[end+1:]
	}

	cleaned := append([]byte(strings.Join(header, ",")), '\n')
	return append(cleaned, rest...), nil
}
