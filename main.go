package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	isatty "github.com/mattn/go-isatty"
	"go.uber.org/fx"
)

type runCmd struct{}

type versionCmd struct{}

type serverCmd struct{}

var cli struct {
	Server     string        `help:"mascotDB server URL" placeholder:"URL"`
	Timeout    time.Duration `help:"Request timeout (e.g. 10s)"`
	Debug      bool          `help:"Enable debug logging"`
	Command    []string      `short:"c" sep:"none" help:"Run a command without the TUI (repeatable)"`
	File       string        `short:"f" help:"Run the commands in a script file, one per line ('-' for stdin)"`
	NoColor    bool          `help:"Disable colors"`
	Version    versionCmd    `cmd:"version" help:"Print version information"`
	ServerInfo serverCmd     `cmd:"server" help:"Print server information"`
	Run        runCmd        `cmd:"" default:"1" help:"Run the interactive application"`
}

// errBatchFailed is returned when a non-interactive command was rejected
// or could not reach the server. The details are already on stderr.
var errBatchFailed = errors.New("one or more commands failed")

func cliOverrides() ConfigOverrides {
	return ConfigOverrides{
		ServerURL: cli.Server,
		Timeout:   cli.Timeout,
		Debug:     cli.Debug,
		NoColor:   cli.NoColor,
	}
}

// nonInteractive reports whether commands come from flags or a script
func nonInteractive() bool {
	return len(cli.Command) > 0 || cli.File != ""
}

func (v versionCmd) Run() error {
	fmt.Printf("mascot v%s\n", appVersion())
	return nil
}

func (s serverCmd) Run() error {
	var (
		config *Config
		client *QueryClient
	)
	app := newApp(fx.Populate(&config, &client))
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.Timeout)
	defer cancel()
	info, err := client.Info(ctx)
	if err != nil {
		return errors.New(connectivityNotice)
	}

	md := info.Markdown(client.BaseURL())
	if config.UI.Markdown && isatty.IsTerminal(os.Stdout.Fd()) {
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
		if err == nil {
			if out, err := renderer.Render(md); err == nil {
				md = out
			}
		}
	}
	fmt.Print(md)
	return nil
}

func (r *runCmd) Run() error {
	if nonInteractive() {
		return runNonInteractive()
	}

	// Check if we are running in a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Use -c or -f to run commands without one.")
		return nil
	}

	var prog *tea.Program
	app := newApp(fx.Populate(&prog))
	if err := app.Err(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			slog.Error("failed to stop application", "error", err)
		}
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}

func runNonInteractive() error {
	commands := append([]string(nil), cli.Command...)
	if cli.File != "" {
		script, err := readScript(cli.File)
		if err != nil {
			return err
		}
		commands = append(commands, script...)
	}

	var (
		console *Console
		logger  *slog.Logger
	)
	app := newApp(fx.Populate(&console, &logger))
	if err := app.Err(); err != nil {
		return err
	}
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			logger.Error("failed to stop application", "error", err)
		}
	}()

	styled := isatty.IsTerminal(os.Stdout.Fd()) && !cli.NoColor
	return runBatch(ctx, console, commands, os.Stdout, os.Stderr, styled)
}

// runBatch submits commands one at a time, in order. Results go to stdout
// and error banners to stderr. Every command runs even after a failure.
func runBatch(ctx context.Context, console *Console, commands []string, stdout, stderr io.Writer, styled bool) error {
	if styled {
		NewTheme()
	}

	failed := false
	for _, command := range commands {
		if isConsoleCommand(command) {
			fmt.Fprintf(stderr, "Skipping console command %s\n", strings.TrimSpace(command))
			continue
		}
		out, ok := console.Submit(ctx, command)
		if !ok {
			continue
		}

		snap := console.Snapshot()
		if out.Err != nil || snap.Error != "" {
			failed = true
			text := snap.Error
			if styled {
				fmt.Fprintln(stderr, renderErrorBanner(text, 80))
			} else {
				fmt.Fprintln(stderr, text)
			}
			continue
		}

		if snap.Result == nil {
			continue
		}
		if styled {
			fmt.Fprintln(stdout, renderResultView(*snap.Result, 80))
		} else {
			fmt.Fprintln(stdout, snap.Result.PlainText())
		}
	}

	if failed {
		return errBatchFailed
	}
	return nil
}

// readScript returns the commands in path, one per line. Blank lines and
// lines starting with "--" are skipped. "-" reads stdin.
func readScript(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseScript(r)
}

func parseScript(r io.Reader) ([]string, error) {
	var commands []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return commands, nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("mascot"),
		kong.Description("A terminal console for the mascotDB query service."),
	)

	err := ctx.Run()
	if errors.Is(err, errBatchFailed) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
