package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Empty-state and section texts shown by the results panel.
const (
	emptyDatabasesText  = "No databases found"
	emptyRelationalText = "No relational tables"
	emptyVectorText     = "No vector tables"
	emptyRowsText       = "No results"
	emptyMatchesText    = "No matches found"
	relationalTitle     = "Relational Tables"
	vectorTitle         = "Vector Tables"
	unnamedFailureText  = "The server reported an error without a message"
)

// SessionState is the part of the session that affects rendering.
type SessionState struct {
	CurrentDatabase string
	HasDatabase     bool
}

// ListItem is one entry of a rendered name list.
type ListItem struct {
	Name   string
	Active bool
}

// ListSection is a titled name list with its own empty state.
type ListSection struct {
	Title string
	Items []ListItem
	Empty string
}

// MatchBlock is one rendered similarity hit.
type MatchBlock struct {
	Index      int64
	Similarity string
	Metadata   string
}

// Result is the presentation of a classified response, independent of
// terminal styling. Only the fields relevant to Kind are set.
type Result struct {
	Kind     ResponseKind
	Notice   string
	Items    []ListItem
	Sections []ListSection
	Columns  []string
	Rows     [][]string
	Matches  []MatchBlock
	JSON     string
	Empty    string
	Error    string
}

// IsError reports whether the result belongs on the error banner.
func (r Result) IsError() bool {
	return r.Kind == KindFailure
}

// Render turns a classified response into a Result. It is pure.
func Render(resp Response, state SessionState) Result {
	switch v := resp.(type) {
	case DatabaseNotice:
		return Result{Kind: v.Kind(), Notice: v.Message}
	case TableNotice:
		return Result{Kind: v.Kind(), Notice: v.Message}
	case InsertNotice:
		return Result{Kind: v.Kind(), Notice: v.Message}
	case DatabasesList:
		res := Result{Kind: v.Kind(), Items: listItems(v.Names, state)}
		if len(v.Names) == 0 {
			res.Empty = emptyDatabasesText
		}
		return res
	case TablesList:
		return Result{Kind: v.Kind(), Sections: []ListSection{
			section(relationalTitle, v.Relational, emptyRelationalText),
			section(vectorTitle, v.Vector, emptyVectorText),
		}}
	case RowSet:
		return renderRows(v)
	case VectorMatches:
		return renderMatches(v)
	case RawFallback:
		return Result{Kind: v.Kind(), JSON: prettyJSON(v.Payload)}
	case Failure:
		msg := v.Message
		if strings.TrimSpace(msg) == "" {
			msg = unnamedFailureText
		}
		return Result{Kind: v.Kind(), Error: msg}
	}
	return Result{Kind: KindRawFallback, JSON: "{}"}
}

func listItems(names []string, state SessionState) []ListItem {
	items := make([]ListItem, len(names))
	for i, name := range names {
		items[i] = ListItem{
			Name:   name,
			Active: state.HasDatabase && name == state.CurrentDatabase,
		}
	}
	return items
}

func section(title string, names []string, empty string) ListSection {
	s := ListSection{Title: title, Items: listItems(names, SessionState{})}
	if len(names) == 0 {
		s.Empty = empty
	}
	return s
}

func renderRows(rs RowSet) Result {
	res := Result{Kind: rs.Kind(), Columns: append([]string(nil), rs.Columns...)}
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellText(cell)
		}
		res.Rows = append(res.Rows, cells)
	}
	if len(rs.Rows) == 0 {
		res.Empty = emptyRowsText
	}
	return res
}

func renderMatches(vm VectorMatches) Result {
	res := Result{Kind: vm.Kind()}
	for _, m := range vm.Matches {
		block := MatchBlock{
			Index:      m.Index,
			Similarity: strconv.FormatFloat(m.Similarity, 'f', 4, 64),
		}
		if len(m.Metadata) > 0 {
			if data, err := json.MarshalIndent(m.Metadata, "", "  "); err == nil {
				block.Metadata = string(data)
			}
		}
		res.Matches = append(res.Matches, block)
	}
	if len(vm.Matches) == 0 {
		res.Empty = emptyMatchesText
	}
	return res
}

// cellText renders a decoded JSON value the way a table cell shows it.
func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return "null"
	case string:
		return c
	case json.Number:
		return numberText(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case map[string]any, []any:
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

// numberText prints decimals the way a JavaScript number would, so 1.0
// shows as 1. Integer literals keep their digits.
func numberText(n json.Number) string {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		return text
	}
	f, err := n.Float64()
	if err != nil {
		return text
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// prettyJSON indents raw JSON with two spaces, keeping key order.
func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// PlainText renders the result without styling, for pipes and exports.
func (r Result) PlainText() string {
	var b strings.Builder
	switch r.Kind {
	case KindFailure:
		b.WriteString("Error: " + r.Error)
	case KindDatabaseNotice, KindTableNotice, KindInsertNotice:
		b.WriteString(r.Notice)
	case KindDatabasesList:
		writeItems(&b, r.Items, r.Empty)
	case KindTablesList:
		for i, s := range r.Sections {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(s.Title + ":\n")
			writeItems(&b, s.Items, s.Empty)
		}
	case KindRowSet:
		if r.Empty != "" {
			b.WriteString(r.Empty)
			break
		}
		b.WriteString(strings.Join(r.Columns, "\t"))
		for _, row := range r.Rows {
			b.WriteString("\n" + strings.Join(row, "\t"))
		}
	case KindVectorMatches:
		if r.Empty != "" {
			b.WriteString(r.Empty)
			break
		}
		for i, m := range r.Matches {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Index: %d\nSimilarity: %s", m.Index, m.Similarity)
			if m.Metadata != "" {
				b.WriteString("\nMetadata:\n" + m.Metadata)
			}
		}
	case KindRawFallback:
		b.WriteString(r.JSON)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, items []ListItem, empty string) {
	if len(items) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, item := range items {
		marker := "  "
		if item.Active {
			marker = "* "
		}
		b.WriteString(marker + item.Name + "\n")
	}
}
