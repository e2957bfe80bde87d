// Package statement parses Interactive Brokers Activity Statement exports.
// An Activity Statement is a single CSV file that concatenates many logical
// tables: every physical line starts with a section label and a row kind
// ("Header" or "Data"), followed by the actual CSV payload of that row.
package statement

import (
	"encoding/csv"
	"strings"
)

// RowKind discriminates the two structural row types of the export format.
type RowKind string

const (
	// RowKindHeader introduces the column list of a new block within a section.
	RowKindHeader RowKind = "Header"
	// RowKindData carries one value row aligned to the most recent header.
	RowKindData RowKind = "Data"
)

// RawLine is one tokenized physical line of the statement file.
type RawLine struct {
	Section string
	Kind    RowKind
	Fields  []string
}

// Tokenize splits a physical line into its section label, row kind and the
// quote-aware CSV fields of the remainder. Only the first two commas are
// structural; everything after the second comma is re-parsed as regular CSV.
// Lines that are empty or have fewer than three comma-separated parts carry
// no information and are discarded (ok == false), never treated as errors.
func Tokenize(line string) (RawLine, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return RawLine{}, false
	}

	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 3 {
		return RawLine{}, false
	}

	section := strings.TrimSpace(parts[0])
	kind := strings.TrimSpace(parts[1])

	fields, err := parseCSVFields(parts[2])
	if err != nil {
		log.WithField("line", line).Warn("Discarding line with malformed CSV remainder")
		return RawLine{}, false
	}

	return RawLine{
		Section: section,
		Kind:    RowKind(kind),
		Fields:  fields,
	}, true
}

// parseCSVFields parses the remainder of a tokenized line as one CSV record
// with double-quote quoting and insignificant spaces after commas.
func parseCSVFields(tail string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(tail))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	return r.Read()
}
