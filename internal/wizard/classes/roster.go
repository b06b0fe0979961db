package classes

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/kode4food/learnable/pkg/api"
)

// Roster columns the backend requires. year_level, student_email, and
// disability_info are also accepted
var RosterColumns = []string{"first_name", "last_name"}

const (
	MsgRosterEmpty   = "The CSV file has no student rows"
	MsgRosterInvalid = "The CSV file could not be read"
	MsgRosterColumns = "The CSV file must have columns: "
)

// CheckRoster verifies that a student roster is a CSV file with a header
// row naming the required columns and at least one student row
func CheckRoster(f *api.File) error {
	r := csv.NewReader(bytes.NewReader(f.Data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return api.Validation(MsgRosterEmpty)
	}
	if err != nil {
		return invalidRoster(err)
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}
	for _, col := range RosterColumns {
		if !slices.Contains(header, col) {
			return api.Validation(
				MsgRosterColumns + strings.Join(RosterColumns, ", "),
			)
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return api.Validation(MsgRosterEmpty)
		}
		if err != nil {
			return invalidRoster(err)
		}
		if !blankRecord(rec) {
			return nil
		}
	}
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func invalidRoster(err error) error {
	return &api.ErrorRecord{
		Kind:    api.ErrorValidation,
		Message: MsgRosterInvalid,
		Raw:     err.Error(),
	}
}
