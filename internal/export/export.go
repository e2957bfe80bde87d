// Package export writes normalized records to a standardized CSV file.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"investflow/ibkr-csv/internal/fileutils"
	"investflow/ibkr-csv/internal/trades"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// WriteRecordsToCSV writes records to a CSV file in a standardized format.
// Column order follows the csv struct tags on trades.Record; the raw_data
// payload is not exported.
func WriteRecordsToCSV(records []trades.Record, csvFile string) error {
	if records == nil {
		return fmt.Errorf("cannot write nil records to CSV")
	}

	log.WithFields(logrus.Fields{
		"file":  csvFile,
		"count": len(records),
	}).Info("Writing records to CSV file")

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(csvFile)); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return fmt.Errorf("error writing CSV file: %w", err)
	}

	log.WithField("file", csvFile).Info("Successfully wrote CSV file")
	return nil
}
