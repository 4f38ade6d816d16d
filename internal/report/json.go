package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gradle-helper/gradle-version-migration-tool/internal/filesystem"
	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// ErrNoReport is returned by LoadJSON when no report has been saved
var ErrNoReport = errors.New("no saved report")

// SaveJSON writes a report as indented JSON, replacing any previous file atomically
func SaveJSON(path string, report *models.Report) error {
	return writeJSON(path, report)
}

// LoadJSON reads a report written by SaveJSON and recomputes its counts
func LoadJSON(path string) (*models.Report, error) {
	var report models.Report
	if err := readJSON(path, &report); err != nil {
		return nil, err
	}
	report.Recount()
	return &report, nil
}

// SaveBatchJSON records the outcome of a fix request
func SaveBatchJSON(path string, batch *models.BatchResult) error {
	return writeJSON(path, batch)
}

// LoadBatchJSON reads a batch written by SaveBatchJSON
func LoadBatchJSON(path string) (*models.BatchResult, error) {
	var batch models.BatchResult
	if err := readJSON(path, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, data)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNoReport)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
