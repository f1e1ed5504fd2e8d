package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const condorcetExport = `{
  "election": {
    "id": "1700000000000",
    "title": "Board Seat",
    "status": "completed",
    "contestType": "Condorcet",
    "categories": [{
      "id": "cat1",
      "name": "Seat",
      "numWinners": 1,
      "candidates": [{"name": "A"}, {"name": "B"}, {"name": "C"}]
    }]
  },
  "votes": [
    {"votes": [{"categoryId": "cat1", "preferences": ["A", "B", "C"]}]},
    {"votes": [{"categoryId": "cat1", "preferences": ["A", "C", "B"]}]},
    {"votes": [{"categoryId": "cat1", "preferences": ["B", "A", "C"]}]}
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Tables(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{writeFile(t, condorcetExport)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"# Board Seat (Condorcet, 3 votes)", "## Seat", "Winner: A"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-json", writeFile(t, condorcetExport)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}

	var doc struct {
		TotalVotes int `json:"totalVotes"`
		Results    struct {
			Categories []struct {
				Results struct {
					Winners []string `json:"winners"`
				} `json:"results"`
			} `json:"categories"`
		} `json:"results"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if doc.TotalVotes != 3 || len(doc.Results.Categories) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if w := doc.Results.Categories[0].Results.Winners; len(w) != 1 || w[0] != "A" {
		t.Errorf("expected winner A, got %v", w)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		code int
	}{
		{"no file", func(t *testing.T) []string { return nil }, 2},
		{"bad flag", func(t *testing.T) []string { return []string{"-nope"} }, 2},
		{"missing file", func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "none.json")} }, 1},
		{"bad json", func(t *testing.T) []string { return []string{writeFile(t, "{")} }, 1},
		{"no election", func(t *testing.T) []string { return []string{writeFile(t, `{"votes": []}`)} }, 1},
		{"unknown contest type", func(t *testing.T) []string {
			return []string{writeFile(t, strings.Replace(condorcetExport, `"Condorcet"`, `"IRV"`, 1))}
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args(t), &stdout, &stderr); code != tt.code {
				t.Errorf("expected exit %d, got %d (%s)", tt.code, code, stderr.String())
			}
		})
	}
}
