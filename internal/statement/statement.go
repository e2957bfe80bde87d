package statement

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

const (
	sectionTrades     = "Trades"
	sectionCashReport = "Cash Report"
)

// Statement is the fully parsed Activity Statement: one table per section
// key, the keys in the order they were published, and any validation
// warnings raised while parsing.
type Statement struct {
	Sections map[string]*Table
	Keys     []string
	Warnings []string
}

// Parse reads an entire Activity Statement from r. Lines that do not match
// the export grammar are skipped. The only fatal condition is a read error;
// structural anomalies are recovered locally and surfaced as warnings.
func Parse(r io.Reader) (*Statement, error) {
	asm := NewAssembler()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		if ln, ok := Tokenize(line); ok {
			asm.Feed(ln)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading statement: %w", err)
	}

	sections, keys := asm.Finish()
	st := &Statement{Sections: sections, Keys: keys}
	st.validate()

	log.WithFields(logrus.Fields{
		"sections": len(st.Sections),
		"warnings": len(st.Warnings),
	}).Info("Parsed activity statement")
	return st, nil
}

// ParseFile opens and parses an Activity Statement file. An unreadable file
// aborts the run; everything past opening is handled by Parse.
func ParseFile(filePath string) (*Statement, error) {
	log.WithField("file", filePath).Info("Parsing activity statement file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening statement file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	return Parse(file)
}

// TradeKeys returns the section keys holding trade tables, in publication order.
func (s *Statement) TradeKeys() []string {
	return s.keysWithPrefix(sectionTrades)
}

// CashReportKeys returns the section keys holding cash report tables.
func (s *Statement) CashReportKeys() []string {
	return s.keysWithPrefix(sectionCashReport)
}

func (s *Statement) keysWithPrefix(prefix string) []string {
	var keys []string
	for _, k := range s.Keys {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// validate records warnings for the sections downstream consumers expect.
// Missing sections do not stop the parse; whatever exists is still processed.
func (s *Statement) validate() {
	if len(s.TradeKeys()) == 0 {
		s.warn("no Trades section found in statement")
	}
	if len(s.CashReportKeys()) == 0 {
		s.warn("no Cash Report section found in statement")
	}
}

func (s *Statement) warn(msg string) {
	log.Warn(msg)
	s.Warnings = append(s.Warnings, msg)
}
