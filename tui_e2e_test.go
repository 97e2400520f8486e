package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"
)

// newMascotServer fakes the /query endpoint with canned replies
func newMascotServer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"mascotDB","version":"1.0.0","description":"test server"}`))
		case "/query":
			var req struct {
				Command string `json:"command"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body, ok := replies[req.Command]
			if !ok {
				body = `{"status":"error","message":"Unsupported command: ` + req.Command + `"}`
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quitTestModel(tm *teatest.TestModel) {
	// Quit the application (requires double CTRL-C)
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	time.Sleep(ctrlCDebounceTime + 50*time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func TestE2E_SubmitAgainstServer(t *testing.T) {
	srv := newMascotServer(t, map[string]string{
		"USE DATABASE shop": `{"status":"success","message":"Using database 'SHOP'"}`,
		"SHOW TABLES":       `{"status":"success","tables":["orders","users"],"vector_tables":["embeddings"]}`,
	})

	config := mockConfig()
	config.Server.URL = srv.URL
	client := NewQueryClient(srv.URL, 2*time.Second)
	model := NewTUIModel(config, newTestConsole(t, client), client, nil)

	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(120, 40))

	tm.Type("USE DATABASE shop")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "Using database 'SHOP'")
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	tm.Type("SHOW TABLES")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "embeddings")
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	quitTestModel(tm)

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(TUIModel)
	require.True(t, ok)
	require.Equal(t, []string{"USE DATABASE shop", "SHOW TABLES"}, final.console.History())
	require.Equal(t, "SHOP", final.status.Database)
	require.Empty(t, final.errorText)
	require.NotNil(t, final.content.Results().Result())
	require.Equal(t, KindTablesList, final.content.Results().Result().Kind)
}

func TestE2E_ServerDown(t *testing.T) {
	srv := newMascotServer(t, nil)
	url := srv.URL
	srv.Close()

	config := mockConfig()
	config.Server.URL = url
	client := NewQueryClient(url, time.Second)
	model := NewTUIModel(config, newTestConsole(t, client), client, nil)

	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(120, 40))

	tm.Type("SHOW DATABASES")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "Failed to connect to the server")
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	quitTestModel(tm)

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(TUIModel)
	require.True(t, ok)
	require.Equal(t, connectivityNotice, final.errorText)
	require.Empty(t, final.console.History())
}

func TestE2E_ServerCommand(t *testing.T) {
	srv := newMascotServer(t, nil)

	config := mockConfig()
	config.Server.URL = srv.URL
	client := NewQueryClient(srv.URL, 2*time.Second)
	model := NewTUIModel(config, newTestConsole(t, client), client, nil)

	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(120, 40))

	tm.Type(":server")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return strings.Contains(string(bts), "test server")
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	// Leave the server view, then quit from the results panel
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	time.Sleep(100 * time.Millisecond)
	quitTestModel(tm)

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(TUIModel)
	require.True(t, ok)
	require.Equal(t, ViewResults, final.content.GetActiveView())
}
