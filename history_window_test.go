package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterHistory(t *testing.T) {
	history := []string{
		"SHOW DATABASES",
		"USE DATABASE shop",
		"SHOW TABLES",
		"SELECT * FROM orders",
	}

	t.Run("no filter lists newest first", func(t *testing.T) {
		items := filterHistory(history, "")
		require.Len(t, items, 4)
		assert.Equal(t, historyItem{Index: 4, Command: "SELECT * FROM orders"}, items[0])
		assert.Equal(t, historyItem{Index: 1, Command: "SHOW DATABASES"}, items[3])
	})

	t.Run("fuzzy and case-insensitive", func(t *testing.T) {
		items := filterHistory(history, "tabl")
		require.Len(t, items, 1)
		assert.Equal(t, "SHOW TABLES", items[0].Command)
		assert.Equal(t, 3, items[0].Index)
	})

	t.Run("closest match first", func(t *testing.T) {
		items := filterHistory(history, "show")
		require.Len(t, items, 2)
		assert.Equal(t, "SHOW TABLES", items[0].Command, "shorter distance wins")
		assert.Equal(t, "SHOW DATABASES", items[1].Command)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, filterHistory(history, "zzz"))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, filterHistory(nil, ""))
	})
}

func TestHistoryWindowRender(t *testing.T) {
	NewTheme()
	h := NewHistoryWindow()
	h.SetSize(60, 10)

	h.SetHistory(nil, "")
	assert.Contains(t, h.RenderList(0, 0), "No commands yet")

	h.SetHistory([]string{"SHOW DATABASES", "SHOW TABLES"}, " tab ")
	assert.Equal(t, "tab", h.Filter())
	out := h.RenderList(0, 0)
	assert.Contains(t, out, `Command history matching "tab"`)
	assert.Contains(t, out, "SHOW TABLES")

	h.SetHistory([]string{"SHOW DATABASES"}, "zzz")
	assert.Contains(t, h.RenderList(0, 0), "No commands match the filter")
}

func TestHistoryWindowSelectedItem(t *testing.T) {
	h := NewHistoryWindow()
	h.SetHistory([]string{"a", "b", "c"}, "")

	item := h.GetSelectedItem(0)
	require.NotNil(t, item)
	assert.Equal(t, "c", item.Command)
	assert.Nil(t, h.GetSelectedItem(3))
	assert.Nil(t, h.GetSelectedItem(-1))
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "hello", truncateSnippet("hello", 10))
	assert.Equal(t, "hell…", truncateSnippet("hello world", 5))
	assert.Equal(t, "…", truncateSnippet("hello", 1))
	assert.Equal(t, "héll…", truncateSnippet("héllo wörld", 5))
}
