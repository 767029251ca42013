package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platefull/platefull-api/internal/testutil"
)

func TestIngredientLoader_CSV(t *testing.T) {
	repo := testutil.NewMockIngredientRepo()
	l := NewIngredientLoader(repo)

	csvData := "flour,g\nmilk,ml\nflour,g\n"
	result, err := l.LoadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want Created 2 Skipped 1", result)
	}
	if len(repo.Ingredients) != 2 {
		t.Errorf("catalog has %d entries, want 2", len(repo.Ingredients))
	}

	// Re-loading the same file creates nothing
	result, err = l.LoadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("second LoadCSV error: %v", err)
	}
	if result.Created != 0 || result.Skipped != 3 {
		t.Errorf("re-run result = %+v, want Created 0 Skipped 3", result)
	}
}

func TestIngredientLoader_CSVRejectsShortRows(t *testing.T) {
	l := NewIngredientLoader(testutil.NewMockIngredientRepo())

	if _, err := l.LoadCSV(strings.NewReader("justaname\n")); err == nil {
		t.Error("row without a measurement unit accepted")
	}
}

func TestIngredientLoader_JSON(t *testing.T) {
	repo := testutil.NewMockIngredientRepo()
	l := NewIngredientLoader(repo)

	jsonData := `[
		{"name": "flour", "measurement_unit": "g"},
		{"name": "milk", "measurement_unit": "ml"},
		{"name": "flour", "measurement_unit": "g"}
	]`
	result, err := l.LoadJSON(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("LoadJSON error: %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want Created 2 Skipped 1", result)
	}
}

func TestIngredientLoader_LoadFileDispatch(t *testing.T) {
	repo := testutil.NewMockIngredientRepo()
	l := NewIngredientLoader(repo)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ingredients.csv")
	if err := os.WriteFile(csvPath, []byte("salt,g\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	jsonPath := filepath.Join(dir, "ingredients.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"name": "sugar", "measurement_unit": "g"}]`), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if result, err := l.LoadFile(csvPath); err != nil || result.Created != 1 {
		t.Errorf("LoadFile(csv) = %+v, %v", result, err)
	}
	if result, err := l.LoadFile(jsonPath); err != nil || result.Created != 1 {
		t.Errorf("LoadFile(json) = %+v, %v", result, err)
	}

	txtPath := filepath.Join(dir, "ingredients.txt")
	if err := os.WriteFile(txtPath, []byte("salt,g\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if _, err := l.LoadFile(txtPath); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestTagLoader_CSV(t *testing.T) {
	repo := testutil.NewMockTagRepo()
	l := NewTagLoader(repo)

	csvData := "Breakfast,#E26C2D,breakfast\nDinner,#49B64E,dinner\n"
	result, err := l.LoadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Errorf("result = %+v, want Created 2 Skipped 0", result)
	}

	result, err = l.LoadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("second LoadCSV error: %v", err)
	}
	if result.Created != 0 || result.Skipped != 2 {
		t.Errorf("re-run result = %+v, want Created 0 Skipped 2", result)
	}
}

func TestTagLoader_CSVRejectsShortRows(t *testing.T) {
	l := NewTagLoader(testutil.NewMockTagRepo())

	if _, err := l.LoadCSV(strings.NewReader("Breakfast,#E26C2D\n")); err == nil {
		t.Error("row without a slug accepted")
	}
}
