package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/platefull/platefull-api/internal/models"
	"github.com/platefull/platefull-api/internal/repository"
)

// Result holds the totals of a catalog load.
type Result struct {
	Created int
	Skipped int
}

// IngredientLoader bulk-loads the ingredient catalog from CSV or JSON files
// with get-or-create semantics: rows that already exist are counted as
// skipped, never duplicated.
type IngredientLoader struct {
	Repo repository.IngredientRepo
}

// NewIngredientLoader creates a new IngredientLoader.
func NewIngredientLoader(repo repository.IngredientRepo) *IngredientLoader {
	return &IngredientLoader{Repo: repo}
}

// LoadFile loads a catalog file, dispatching on the file extension.
func (l *IngredientLoader) LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(f)
	case ".json":
		return l.LoadJSON(f)
	default:
		return Result{}, fmt.Errorf("unsupported ingredient file format: %s", filepath.Ext(path))
	}
}

// LoadCSV loads ingredients from CSV rows of the form "name,measurement unit".
func (l *IngredientLoader) LoadCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var result Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(record) < 2 {
			return result, fmt.Errorf("ingredient row needs a name and a measurement unit, got %v", record)
		}

		created, err := l.upsert(record[0], record[1])
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// LoadJSON loads ingredients from a JSON array of
// {"name": ..., "measurement_unit": ...} objects.
func (l *IngredientLoader) LoadJSON(r io.Reader) (Result, error) {
	var entries []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return Result{}, fmt.Errorf("failed to decode ingredient JSON: %w", err)
	}

	var result Result
	for _, entry := range entries {
		created, err := l.upsert(entry.Name, entry.MeasurementUnit)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

func (l *IngredientLoader) upsert(name, unit string) (bool, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return false, errors.New("ingredient name must not be empty")
	}

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	return l.Repo.FindOrCreateIngredient(ingredient)
}

// TagLoader bulk-loads the tag catalog from CSV files with get-or-create
// semantics.
type TagLoader struct {
	Repo repository.TagRepo
}

// NewTagLoader creates a new TagLoader.
func NewTagLoader(repo repository.TagRepo) *TagLoader {
	return &TagLoader{Repo: repo}
}

// LoadFile loads a tag CSV file.
func (l *TagLoader) LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return l.LoadCSV(f)
}

// LoadCSV loads tags from CSV rows of the form "name,color,slug".
func (l *TagLoader) LoadCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var result Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(record) < 3 {
			return result, fmt.Errorf("tag row needs a name, color and slug, got %v", record)
		}

		tag := &models.Tag{
			Name:  strings.TrimSpace(record[0]),
			Color: strings.TrimSpace(record[1]),
			Slug:  strings.TrimSpace(record[2]),
		}
		if tag.Name == "" {
			return result, errors.New("tag name must not be empty")
		}

		created, err := l.Repo.FindOrCreateTag(tag)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}
