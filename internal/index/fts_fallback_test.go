//go:build !sqlite_fts5

package index

import "testing"

func TestSearchFallback_LiteralWildcards(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(entry("glue_cola.txt", "glue_cola", "txt", nil, "", ""))
	_ = db.UpsertEntry(entry("glueXcola.txt", "glueXcola", "txt", nil, "", ""))
	_ = db.UpsertEntry(entry("rate.txt", "rate", "txt", nil, "", ""))

	results, err := db.Search("glue_cola", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "glue_cola.txt" {
		t.Errorf("results = %+v, want only glue_cola.txt", results)
	}

	results, err = db.Search("%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("'%%' matched %d files, want 0", len(results))
	}
}

func TestSearchFallback_Tag(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(entry("report-q_1.pdf", "report", "pdf", []string{"q_1"}, "", ""))

	results, err := db.Search("q_1", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %+v, want 1", results)
	}
}
