package upload

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FileKind is the format of a file selected for upload.
type FileKind string

const (
	KindCSV  FileKind = "csv"
	KindJSON FileKind = "json"
	KindGTFS FileKind = "gtfs"
)

// ErrUnsupported is returned for files the route service cannot parse.
var ErrUnsupported = errors.New("only CSV, JSON and GTFS zip files are supported")

// RequiredColumns are the columns the route service needs in an uploaded table.
var RequiredColumns = []string{
	"route_id",
	"stop_id",
	"latitude",
	"longitude",
	"scheduled_time",
	"dwell_time_in_seconds",
	"segment_length",
}

// MissingColumnsError lists required columns absent from an uploaded table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

// Kind classifies a file by its extension.
func Kind(filename string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return KindCSV, nil
	case ".json":
		return KindJSON, nil
	case ".zip":
		return KindGTFS, nil
	default:
		return "", ErrUnsupported
	}
}

// CheckCSVHeader reads the header row of r and reports missing required columns.
func CheckCSVHeader(r io.Reader) error {
	header, err := csv.NewReader(r).Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))] = true
	}
	return missing(present)
}

// CheckJSONRecords checks a JSON upload: an array of records, or an object of
// column arrays, carrying every required column.
func CheckJSONRecords(data []byte) error {
	if !json.Valid(data) {
		return errors.New("file is not valid JSON")
	}

	present := map[string]bool{}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		if len(records) == 0 {
			return errors.New("file contains no records")
		}
		for key := range records[0] {
			present[key] = true
		}
		return missing(present)
	}

	var columns map[string]json.RawMessage
	if err := json.Unmarshal(data, &columns); err != nil {
		return errors.New("JSON upload must be an array of records or an object of columns")
	}
	for key := range columns {
		present[key] = true
	}
	return missing(present)
}

// Prepare checks a selected file and returns the name and bytes to forward to the
// route service. GTFS feeds are converted to the CSV upload format.
func Prepare(filename string, data []byte) (string, io.Reader, error) {
	kind, err := Kind(filename)
	if err != nil {
		return "", nil, err
	}

	switch kind {
	case KindCSV:
		if err := CheckCSVHeader(bytes.NewReader(data)); err != nil {
			return "", nil, err
		}
		return filename, bytes.NewReader(data), nil
	case KindJSON:
		if err := CheckJSONRecords(data); err != nil {
			return "", nil, err
		}
		return filename, bytes.NewReader(data), nil
	default:
		var buf bytes.Buffer
		if _, err := ConvertGTFS(data, &buf); err != nil {
			return "", nil, err
		}
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + ".csv"
		return name, &buf, nil
	}
}

func missing(present map[string]bool) error {
	var absent []string
	for _, column := range RequiredColumns {
		if !present[column] {
			absent = append(absent, column)
		}
	}
	if len(absent) > 0 {
		return &MissingColumnsError{Columns: absent}
	}
	return nil
}
