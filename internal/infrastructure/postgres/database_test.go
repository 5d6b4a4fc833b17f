package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "placeholders kept",
			query: "SELECT id FROM accounts WHERE id = $1 AND type = $12",
			want:  "SELECT id FROM accounts WHERE id = $1 AND type = $12",
		},
		{
			name:  "string literal",
			query: "SELECT id FROM accounts WHERE id LIKE 'acc-%'",
			want:  "SELECT id FROM accounts WHERE id LIKE '?'",
		},
		{
			name:  "escaped quote",
			query: "SELECT 'it''s' AS s",
			want:  "SELECT '?' AS s",
		},
		{
			name:  "numeric literal",
			query: "SELECT COALESCE(SUM(amount), 0.00) FROM transactions LIMIT 10",
			want:  "SELECT COALESCE(SUM(amount), ?) FROM transactions LIMIT ?",
		},
		{
			name:  "identifier digits kept",
			query: "SELECT col1 FROM t2",
			want:  "SELECT col1 FROM t2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	got := sanitizeQuery("SELECT " + strings.Repeat("x", 400))
	if len(got) != 256+len("...") || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation to 256 chars, got %d", len(got))
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := map[string]string{
		"select 1":                          "SELECT",
		"\n\t\tUPDATE accounts\n\t\tSET x=1": "UPDATE",
		"COMMIT":                            "COMMIT",
	}
	for query, want := range tests {
		if got := extractSQLVerb(query); got != want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestPQErrorClassification(t *testing.T) {
	fk := fmt.Errorf("failed to create transaction: %w", &pq.Error{Code: "23503"})
	unique := &pq.Error{Code: "23505"}

	if !isForeignKeyViolation(fk) {
		t.Error("expected wrapped 23503 to be a foreign key violation")
	}
	if isForeignKeyViolation(unique) {
		t.Error("23505 is not a foreign key violation")
	}
	if !isUniqueViolation(unique) {
		t.Error("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain errors are not unique violations")
	}
}
