package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/afittestide/mascot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExportMeta() exportMeta {
	return exportMeta{
		SessionID: "3f2a9c1e-7b44-4d0e-9a51-0c6f2e8d1b7a",
		ServerURL: "http://localhost:8000",
		Database:  "SHOP",
		When:      time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func testEntries() []storage.Entry {
	return []storage.Entry{
		{Seq: 1, Command: "USE DATABASE shop", Outcome: storage.OutcomeSuccess, Kind: "database_notice",
			Rendered: "Using database 'SHOP'", Duration: 12 * time.Millisecond},
		{Seq: 2, Command: "SHOW TABLEZ", Outcome: storage.OutcomeFailure, Kind: "failure",
			Error: "Unsupported command: SHOW TABLEZ", Duration: 3 * time.Millisecond},
		{Seq: 3, Command: "SELECT * FROM users\nWHERE name = 'o''brien'", Outcome: storage.OutcomeSuccess,
			Kind: "rows", Rendered: "id\tname\n1\to'brien", Duration: 40 * time.Millisecond},
		{Seq: 4, Command: "SHOW DATABASES", Outcome: storage.OutcomeTransport,
			Error: "dial tcp: connection refused", Duration: time.Second},
		{Seq: 5, Command: "SHOW TABLES", Outcome: storage.OutcomeCanceled, Duration: 200 * time.Millisecond},
	}
}

func TestParseExportType(t *testing.T) {
	tests := []struct {
		arg     string
		want    ExportType
		wantErr bool
	}{
		{arg: "", want: ExportTypeTranscript},
		{arg: "transcript", want: ExportTypeTranscript},
		{arg: "SCRIPT", want: ExportTypeScript},
		{arg: " script ", want: ExportTypeScript},
		{arg: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseExportType(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Use 'transcript' or 'script'")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateTranscript(t *testing.T) {
	out := generateTranscript(testEntries(), testExportMeta())

	assert.True(t, strings.HasPrefix(out, "# mascot transcript\n"))
	assert.Contains(t, out, "- **Session:** 3f2a9c1e-7b44-4d0e-9a51-0c6f2e8d1b7a")
	assert.Contains(t, out, "- **Server:** http://localhost:8000")
	assert.Contains(t, out, "- **Database:** SHOP")
	assert.Contains(t, out, "- **Exported:** 2025-03-14T09:26:53Z")
	assert.Contains(t, out, "- **Commands:** 5 (2 succeeded)")

	assert.Contains(t, out, "## 1. `USE DATABASE shop`")
	assert.Contains(t, out, "_success · database_notice · 12ms_")
	assert.Contains(t, out, "```\nUsing database 'SHOP'\n```")

	assert.Contains(t, out, "## 2. `SHOW TABLEZ`")
	assert.Contains(t, out, "> Error: Unsupported command: SHOW TABLEZ")

	// Multi-line commands are folded into the heading
	assert.Contains(t, out, "## 3. `SELECT * FROM users WHERE name = 'o''brien'`")

	assert.Contains(t, out, "_transport · 1s_")
	assert.Contains(t, out, "> "+connectivityNotice)
	assert.NotContains(t, out, "connection refused", "transport details stay in the log")

	assert.Contains(t, out, "## 5. `SHOW TABLES`")
	assert.Contains(t, out, "> Canceled")
}

func TestGenerateTranscript_NoDatabase(t *testing.T) {
	meta := testExportMeta()
	meta.Database = ""

	out := generateTranscript(nil, meta)

	assert.NotContains(t, out, "**Database:**")
	assert.Contains(t, out, "- **Commands:** 0 (0 succeeded)")
}

func TestGenerateReplayScript(t *testing.T) {
	out := generateReplayScript(testEntries(), testExportMeta())

	lines := strings.Split(out, "\n")
	assert.Equal(t, "#!/bin/sh", lines[0])
	assert.Contains(t, out, "set -e\n")
	assert.Contains(t, out, "DEFAULT_SERVER=http://localhost:8000\n")
	assert.Contains(t, out, `SERVER="${MASCOT_SERVER_URL:-$DEFAULT_SERVER}"`)
	assert.Contains(t, out, `exec mascot --server "$SERVER" \`)
	assert.Contains(t, out, "  -c 'USE DATABASE shop'")

	// Only accepted commands are replayed
	assert.NotContains(t, out, "SHOW TABLEZ")
	assert.NotContains(t, out, "SHOW DATABASES")
	assert.NotContains(t, out, "-c 'SHOW TABLES'")

	// Quotes survive shell escaping
	assert.Contains(t, out, `'SELECT * FROM users
WHERE name = '"'"'o'"'"''"'"'brien'"'"''`)
}

func TestGenerateReplayScript_QuotesServerURL(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	config := defaultConfig()
	config.Server.URL = "http://localhost:8000/$(touch${IFS}" + marker + ")`id`\"}"
	require.NoError(t, config.Validate())

	meta := testExportMeta()
	meta.ServerURL = config.Server.URL
	entries := []storage.Entry{{Seq: 1, Command: "SHOW DATABASES", Outcome: storage.OutcomeSuccess}}
	script := generateReplayScript(entries, meta)
	assert.Contains(t, script, "DEFAULT_SERVER="+shellescape.Quote(config.Server.URL)+"\n")

	// Stand-in mascot binary that echoes the server it was given
	bin := filepath.Join(dir, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "mascot"),
		[]byte("#!/bin/sh\nprintf '%s' \"$2\"\n"), 0o755))
	scriptPath := filepath.Join(dir, "replay.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))

	cmd := exec.Command(sh, scriptPath)
	cmd.Env = append(os.Environ(), "PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"), "MASCOT_SERVER_URL=")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	assert.Equal(t, config.Server.URL, string(out), "the URL reaches mascot verbatim")
	assert.NoFileExists(t, marker)
}

func TestGenerateReplayScript_NothingAccepted(t *testing.T) {
	entries := []storage.Entry{{Seq: 1, Command: "BOGUS", Outcome: storage.OutcomeFailure}}

	out := generateReplayScript(entries, testExportMeta())

	assert.Contains(t, out, "# no accepted commands")
	assert.NotContains(t, out, "exec mascot")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", shortID("3f2a9c1e-7b44-4d0e"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "session", shortID(""))
}

func TestExportJournal(t *testing.T) {
	q := &fakeQuerier{replies: map[string]string{
		"USE DATABASE shop": `{"status":"success","message":"Using database 'SHOP'"}`,
	}}
	console := newTestConsole(t, q)
	_, ok := console.Submit(context.Background(), "USE DATABASE shop")
	require.True(t, ok)
	_, ok = console.Submit(context.Background(), "BOGUS")
	require.True(t, ok)

	meta := testExportMeta()
	meta.SessionID = console.SessionID()

	t.Run("transcript", func(t *testing.T) {
		path, err := exportJournal(console.Journal(), meta, ExportTypeTranscript)
		require.NoError(t, err)
		t.Cleanup(func() { os.Remove(path) })

		assert.True(t, strings.HasSuffix(path, "mascot-transcript-test-ses-20250314-092653.md"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "- **Commands:** 2 (1 succeeded)")
		assert.Contains(t, string(data), "Using database 'SHOP'")
	})

	t.Run("script", func(t *testing.T) {
		path, err := exportJournal(console.Journal(), meta, ExportTypeScript)
		require.NoError(t, err)
		t.Cleanup(func() { os.Remove(path) })

		assert.True(t, strings.HasSuffix(path, ".sh"))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "script is executable")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-c 'USE DATABASE shop'")
		assert.NotContains(t, string(data), "BOGUS")
	})
}

func TestExportJournal_NoJournal(t *testing.T) {
	_, err := exportJournal(nil, testExportMeta(), ExportTypeTranscript)
	require.Error(t, err)
}

func TestOpenInEditor(t *testing.T) {
	t.Setenv("EDITOR", "nano")
	cmd := openInEditor("/tmp/x.md")
	assert.Equal(t, []string{"nano", "/tmp/x.md"}, cmd.Args)

	t.Setenv("EDITOR", "")
	cmd = openInEditor("/tmp/x.md")
	assert.Equal(t, []string{"vi", "/tmp/x.md"}, cmd.Args)
}
