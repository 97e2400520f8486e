package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned by Classify when the body is not a JSON object.
var ErrMalformedResponse = errors.New("malformed response")

// ResponseKind names the variant of a classified response.
type ResponseKind string

const (
	KindDatabaseNotice ResponseKind = "database_notice"
	KindTableNotice    ResponseKind = "table_notice"
	KindInsertNotice   ResponseKind = "insert_notice"
	KindDatabasesList  ResponseKind = "databases"
	KindTablesList     ResponseKind = "tables"
	KindRowSet         ResponseKind = "rows"
	KindVectorMatches  ResponseKind = "matches"
	KindRawFallback    ResponseKind = "raw"
	KindFailure        ResponseKind = "failure"
)

// Response is a /query reply after classification. Every reply maps to
// exactly one of the concrete types below.
type Response interface {
	Kind() ResponseKind
}

// DatabaseNotice acknowledges a database level operation.
type DatabaseNotice struct {
	Message string
}

// TableNotice acknowledges a table level operation.
type TableNotice struct {
	Message string
}

// InsertNotice acknowledges a row or vector insert.
type InsertNotice struct {
	Message string
}

// DatabasesList is the reply to SHOW DATABASES.
type DatabasesList struct {
	Names []string
}

// TablesList is the reply to SHOW TABLES.
type TablesList struct {
	Relational []string
	Vector     []string
}

// RowSet is a relational SELECT result. Cells keep their decoded JSON
// values; numbers are json.Number.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// VectorMatch is a single similarity search hit.
type VectorMatch struct {
	Index      int64
	Similarity float64
	Metadata   map[string]any
}

// VectorMatches is a similarity search result.
type VectorMatches struct {
	Matches []VectorMatch
}

// RawFallback carries any success payload no other shape claimed.
type RawFallback struct {
	Payload json.RawMessage
}

// Failure is a reply with status "error".
type Failure struct {
	Message string
}

func (DatabaseNotice) Kind() ResponseKind { return KindDatabaseNotice }
func (TableNotice) Kind() ResponseKind    { return KindTableNotice }
func (InsertNotice) Kind() ResponseKind   { return KindInsertNotice }
func (DatabasesList) Kind() ResponseKind  { return KindDatabasesList }
func (TablesList) Kind() ResponseKind     { return KindTablesList }
func (RowSet) Kind() ResponseKind         { return KindRowSet }
func (VectorMatches) Kind() ResponseKind  { return KindVectorMatches }
func (RawFallback) Kind() ResponseKind    { return KindRawFallback }
func (Failure) Kind() ResponseKind        { return KindFailure }

// IsFailure reports whether resp is a backend error reply.
func IsFailure(resp Response) bool {
	_, ok := resp.(Failure)
	return ok
}

// Classify decodes a /query body and classifies it. The only error is
// ErrMalformedResponse, for bodies that are not a single JSON object.
func Classify(body []byte) (Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedResponse)
	}

	return classify(payload, json.RawMessage(trimmed)), nil
}

// ClassifyPayload classifies an already decoded reply. It never fails.
func ClassifyPayload(payload map[string]any) Response {
	return classify(payload, nil)
}

func classify(payload map[string]any, raw json.RawMessage) Response {
	message, hasMessage := payload["message"].(string)

	if status, _ := payload["status"].(string); status == "error" {
		return Failure{Message: message}
	}

	switch {
	case hasMessage && strings.Contains(message, "Database"):
		return DatabaseNotice{Message: message}
	case hasMessage && strings.Contains(message, "Table"):
		return TableNotice{Message: message}
	}

	if v, ok := payload["databases"]; ok {
		return DatabasesList{Names: stringList(v)}
	}
	if v, ok := payload["tables"]; ok {
		tables, _ := v.(map[string]any)
		return TablesList{
			Relational: stringList(tables["relational"]),
			Vector:     stringList(tables["vector"]),
		}
	}
	if hasMessage && strings.Contains(message, "inserted") {
		return InsertNotice{Message: message}
	}

	columns, hasColumns := payload["columns"]
	rows, hasRows := payload["rows"]
	if hasColumns && hasRows {
		cols := stringList(columns)
		return RowSet{Columns: cols, Rows: rowList(rows, cols)}
	}

	if v, ok := payload["results"]; ok {
		return VectorMatches{Matches: matchList(v)}
	}

	if raw == nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			encoded = []byte("{}")
		}
		raw = encoded
	}
	return RawFallback{Payload: raw}
}

// stringList converts a decoded JSON array into strings. Non-array values
// yield an empty list; non-string elements use their cell form.
func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, cellText(item))
	}
	return out
}

// rowList accepts rows as arrays, or as objects keyed by column name.
func rowList(v any, columns []string) [][]any {
	items, _ := v.([]any)
	out := make([][]any, 0, len(items))
	for _, item := range items {
		switch row := item.(type) {
		case []any:
			out = append(out, row)
		case map[string]any:
			cells := make([]any, len(columns))
			for i, col := range columns {
				cells[i] = row[col]
			}
			out = append(out, cells)
		default:
			out = append(out, []any{row})
		}
	}
	return out
}

func matchList(v any) []VectorMatch {
	items, _ := v.([]any)
	out := make([]VectorMatch, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		match := VectorMatch{}
		if f, ok := number(entry["index"]); ok {
			match.Index = int64(f)
		}
		if f, ok := number(entry["similarity"]); ok {
			match.Similarity = f
		}
		if meta, ok := entry["metadata"].(map[string]any); ok {
			match.Metadata = meta
		}
		out = append(out, match)
	}
	return out
}

// number reads a JSON number whether it was decoded with UseNumber or not.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
