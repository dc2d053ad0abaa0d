package codec

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/dinos/internal/dino"
	"github.com/hpungsan/dinos/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SchemaVersion is written into every export header.
const SchemaVersion = "1.0"

// maxLineBytes bounds a single JSONL line.
const maxLineBytes = 1 << 20

// Header is the first line of a JSONL export file.
type Header struct {
	DinosExport   bool   `json:"_dinos_export"`
	SchemaVersion string `json:"schema_version"`
	ExportID      string `json:"export_id"`
	ExportedAt    int64  `json:"exported_at"`
	Count         int    `json:"count"`
}

// NewHeader builds an export header with a fresh ULID export id.
func NewHeader(now time.Time, count int) Header {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return Header{
		DinosExport:   true,
		SchemaVersion: SchemaVersion,
		ExportID:      ulid.MustNew(ulid.Timestamp(now), entropy).String(),
		ExportedAt:    now.Unix(),
		Count:         count,
	}
}

// LineError describes a record that could not be decoded.
// Line is the 1-based line number for JSONL input and the 1-based
// element position for a JSON array.
type LineError struct {
	Line    int    `json:"line"`
	Species string `json:"species,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wireDino tracks field presence while decoding.
type wireDino struct {
	Species   *string `json:"species"`
	Period    *string `json:"period"`
	Carnivore *bool   `json:"carnivore"`
	Extinct   *bool   `json:"extinct"`
}

// WriteJSONL writes the header followed by one record per line.
func WriteJSONL(w io.Writer, header Header, records []dino.Dino) error {
	if err := writeLine(w, header); err != nil {
		return err
	}
	for _, d := range records {
		if err := writeLine(w, d); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecordsJSONL writes records one per line without a header.
func WriteRecordsJSONL(w io.Writer, records []dino.Dino) error {
	for _, d := range records {
		if err := writeLine(w, d); err != nil {
			return err
		}
	}
	return nil
}

// EncodeJSON writes v as indented JSON followed by a newline.
func EncodeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// Unmarshal decodes data into v with the package's JSON configuration.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func writeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// Decode reads records from a JSON array or from JSONL (with or without an
// export header). Records that fail validation are reported as LineErrors and
// skipped; the returned error is only set when the input itself is unreadable.
func Decode(r io.Reader) ([]dino.Dino, []LineError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.NewInternal(fmt.Errorf("read input: %w", err))
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeArray(trimmed)
	}
	return decodeLines(trimmed)
}

func decodeArray(data []byte) ([]dino.Dino, []LineError, error) {
	var raws []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON array: %v", err))
	}

	records := make([]dino.Dino, 0, len(raws))
	var lineErrs []LineError
	for i, raw := range raws {
		d, lineErr := decodeRecord(i+1, raw)
		if lineErr != nil {
			lineErrs = append(lineErrs, *lineErr)
			continue
		}
		records = append(records, d)
	}
	return records, lineErrs, nil
}

func decodeLines(data []byte) ([]dino.Dino, []LineError, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	records := make([]dino.Dino, 0)
	var lineErrs []LineError
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 && isHeader(line) {
			continue
		}

		d, lineErr := decodeRecord(lineNum, line)
		if lineErr != nil {
			lineErrs = append(lineErrs, *lineErr)
			continue
		}
		records = append(records, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("read line %d: %v", lineNum+1, err))
	}
	return records, lineErrs, nil
}

func isHeader(line []byte) bool {
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return false
	}
	return h.DinosExport
}

// DecodeRecord decodes and validates a single JSON object.
func DecodeRecord(raw []byte) (dino.Dino, error) {
	d, lineErr := decodeRecord(0, raw)
	if lineErr != nil {
		if lineErr.Code == string(errors.ErrInvalidPeriod) {
			return dino.Dino{}, errors.NewInvalidPeriod(periodLiteral(raw))
		}
		return dino.Dino{}, errors.NewInvalidRequest(lineErr.Message)
	}
	return d, nil
}

func periodLiteral(raw []byte) string {
	var w wireDino
	if err := json.Unmarshal(raw, &w); err != nil || w.Period == nil {
		return ""
	}
	return *w.Period
}

func decodeRecord(line int, raw []byte) (dino.Dino, *LineError) {
	var w wireDino
	if err := json.Unmarshal(raw, &w); err != nil {
		return dino.Dino{}, &LineError{
			Line:    line,
			Code:    string(errors.ErrInvalidRequest),
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}
	}

	species := ""
	if w.Species != nil {
		species = *w.Species
	}
	fail := func(code errors.ErrorCode, msg string) (dino.Dino, *LineError) {
		return dino.Dino{}, &LineError{Line: line, Species: species, Code: string(code), Message: msg}
	}

	switch {
	case species == "":
		return fail(errors.ErrInvalidRequest, "species is required")
	case w.Period == nil:
		return fail(errors.ErrInvalidRequest, "period is required")
	case w.Carnivore == nil:
		return fail(errors.ErrInvalidRequest, "carnivore is required")
	}

	period, err := dino.ParsePeriod(*w.Period)
	if err != nil {
		return fail(errors.ErrInvalidPeriod, err.Error())
	}

	extinct := w.Extinct != nil && *w.Extinct
	return dino.NewWithStatus(species, period, *w.Carnivore, extinct), nil
}
