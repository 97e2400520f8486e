package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClassify(t *testing.T, body string) Response {
	t.Helper()
	resp, err := Classify([]byte(body))
	require.NoError(t, err)
	return resp
}

func TestRender_Notices(t *testing.T) {
	for _, body := range []string{
		`{"status":"success","message":"Database 'test' created"}`,
		`{"status":"success","message":"Table 'users' created","columns":["id"]}`,
		`{"status":"success","message":"Row inserted into 'users'"}`,
	} {
		resp := mustClassify(t, body)
		res := Render(resp, SessionState{})
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &payload))
		assert.Equal(t, payload["message"], res.Notice)
		assert.Equal(t, payload["message"], res.PlainText())
		assert.False(t, res.IsError())
	}
}

func TestRender_DatabasesList(t *testing.T) {
	resp := mustClassify(t, `{"status":"success","databases":["test","mydb"]}`)

	t.Run("no active database", func(t *testing.T) {
		res := Render(resp, SessionState{})
		assert.Equal(t, []ListItem{{Name: "test"}, {Name: "mydb"}}, res.Items)
		assert.Empty(t, res.Empty)
	})

	t.Run("exact match is active", func(t *testing.T) {
		res := Render(resp, SessionState{CurrentDatabase: "mydb", HasDatabase: true})
		assert.Equal(t, []ListItem{{Name: "test"}, {Name: "mydb", Active: true}}, res.Items)
		assert.Equal(t, "  test\n* mydb", res.PlainText())
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		res := Render(resp, SessionState{CurrentDatabase: "MYDB", HasDatabase: true})
		for _, item := range res.Items {
			assert.False(t, item.Active)
		}
	})

	t.Run("empty", func(t *testing.T) {
		res := Render(mustClassify(t, `{"status":"success","databases":[]}`), SessionState{})
		assert.Empty(t, res.Items)
		assert.Equal(t, "No databases found", res.Empty)
		assert.Equal(t, "No databases found", res.PlainText())
	})
}

func TestRender_TablesList(t *testing.T) {
	res := Render(mustClassify(t, `{"status":"success","tables":{"relational":["users"],"vector":[]}}`), SessionState{})

	require.Len(t, res.Sections, 2)
	assert.Equal(t, "Relational Tables", res.Sections[0].Title)
	assert.Equal(t, []ListItem{{Name: "users"}}, res.Sections[0].Items)
	assert.Empty(t, res.Sections[0].Empty)
	assert.Equal(t, "Vector Tables", res.Sections[1].Title)
	assert.Empty(t, res.Sections[1].Items)
	assert.Equal(t, "No vector tables", res.Sections[1].Empty)

	assert.Equal(t, "Relational Tables:\n  users\n\nVector Tables:\nNo vector tables", res.PlainText())

	both := Render(TablesList{}, SessionState{})
	assert.Equal(t, "No relational tables", both.Sections[0].Empty)
	assert.Equal(t, "No vector tables", both.Sections[1].Empty)
}

func TestRender_RowSet(t *testing.T) {
	res := Render(mustClassify(t, `{"status":"success","columns":["id","name"],"rows":[["1","alice"],["2","bob"]]}`), SessionState{})

	assert.Equal(t, KindRowSet, res.Kind)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]string{{"1", "alice"}, {"2", "bob"}}, res.Rows)
	assert.Empty(t, res.Empty)
	assert.Equal(t, "id\tname\n1\talice\n2\tbob", res.PlainText())

	empty := Render(mustClassify(t, `{"status":"success","columns":["id"],"rows":[]}`), SessionState{})
	assert.Equal(t, []string{"id"}, empty.Columns)
	assert.Empty(t, empty.Rows)
	assert.Equal(t, "No results", empty.Empty)
	assert.Equal(t, "No results", empty.PlainText())
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"string", "bob", "bob"},
		{"integer", json.Number("42"), "42"},
		{"decimal", json.Number("3.50"), "3.5"},
		{"integral float", json.Number("1.0"), "1"},
		{"negative float", json.Number("-2.000"), "-2"},
		{"exponent", json.Number("1e3"), "1000"},
		{"huge exponent", json.Number("1e21"), "1e+21"},
		{"big integer keeps digits", json.Number("12345678901234567890"), "12345678901234567890"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
		{"array", []any{"x", json.Number("2")}, `["x",2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cellText(tt.value))
		})
	}
}

func TestRender_VectorMatches(t *testing.T) {
	t.Run("empty metadata is hidden", func(t *testing.T) {
		res := Render(mustClassify(t, `{"status":"success","results":[{"index":3,"similarity":0.9123,"metadata":{}}]}`), SessionState{})
		require.Len(t, res.Matches, 1)
		assert.Equal(t, MatchBlock{Index: 3, Similarity: "0.9123"}, res.Matches[0])
		assert.Equal(t, "Index: 3\nSimilarity: 0.9123", res.PlainText())
	})

	t.Run("metadata is pretty printed", func(t *testing.T) {
		res := Render(mustClassify(t, `{"status":"success","results":[{"index":0,"similarity":1,"metadata":{"label":"cat"}}]}`), SessionState{})
		require.Len(t, res.Matches, 1)
		assert.Equal(t, "1.0000", res.Matches[0].Similarity)
		assert.Equal(t, "{\n  \"label\": \"cat\"\n}", res.Matches[0].Metadata)
	})

	t.Run("similarity rounds to four places", func(t *testing.T) {
		res := Render(VectorMatches{Matches: []VectorMatch{{Index: 1, Similarity: 0.123456}}}, SessionState{})
		assert.Equal(t, "0.1235", res.Matches[0].Similarity)
	})

	t.Run("no matches", func(t *testing.T) {
		res := Render(mustClassify(t, `{"status":"success","results":[]}`), SessionState{})
		assert.Empty(t, res.Matches)
		assert.Equal(t, "No matches found", res.Empty)
	})
}

func TestRender_RawFallback(t *testing.T) {
	res := Render(mustClassify(t, `{"status":"success","message":"Using database 'shop'","zeta":[1,2]}`), SessionState{})
	assert.Equal(t, KindRawFallback, res.Kind)
	assert.Equal(t, "{\n  \"status\": \"success\",\n  \"message\": \"Using database 'shop'\",\n  \"zeta\": [\n    1,\n    2\n  ]\n}", res.JSON)
}

func TestRender_Failure(t *testing.T) {
	res := Render(mustClassify(t, `{"status":"error","message":"Unsupported command: FOO"}`), SessionState{})
	assert.True(t, res.IsError())
	assert.Equal(t, "Unsupported command: FOO", res.Error)
	assert.Empty(t, res.Notice)
	assert.Equal(t, "Error: Unsupported command: FOO", res.PlainText())

	blank := Render(Failure{}, SessionState{})
	assert.Equal(t, "The server reported an error without a message", blank.Error)
}
