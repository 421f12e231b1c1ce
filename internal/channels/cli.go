package channels

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const defaultReplPrompt = "route> "

// CLIWriter writes results to terminal output.
type CLIWriter struct {
	out io.Writer
}

// WriteMessage writes one result block.
func (w *CLIWriter) WriteMessage(_ context.Context, text string) error {
	_, err := fmt.Fprintf(w.out, "%s\n", text)
	return err
}

// CLIListener runs an interactive input loop over a terminal or plain streams.
type CLIListener struct {
	in          io.Reader
	out         io.Writer
	historyPath string

	rl       *readline.Instance
	fallback *bufio.Reader
}

// NewCLI creates a listener over stdin/stdout style streams. historyPath is
// used for readline history when input is a terminal.
func NewCLI(in io.Reader, out io.Writer, historyPath string) *CLIListener {
	return &CLIListener{in: in, out: out, historyPath: historyPath}
}

// Listen runs the loop until EOF, /quit, /exit, ctx cancellation, or a fatal handler error.
func (c *CLIListener) Listen(ctx context.Context, handler LineHandler) error {
	if handler == nil {
		return errors.New("handler is required")
	}
	c.ensureInputReady()
	if c.rl != nil {
		defer c.rl.Close()
	}

	if _, err := fmt.Fprintln(c.out, "Interactive mode. Type /help for commands, /quit or /exit to stop."); err != nil {
		return err
	}
	writer := &CLIWriter{out: c.out}

	inputCh := make(chan inputEvent)
	go c.readInputLoop(ctx, inputCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-inputCh:
			if !ok {
				return nil
			}
			if event.err != nil {
				if errors.Is(event.err, io.EOF) || errors.Is(event.err, context.Canceled) {
					return nil
				}
				return event.err
			}

			line := strings.TrimSpace(event.line)
			if line == "" {
				continue
			}
			switch strings.ToLower(line) {
			case "/quit", "quit", "/exit", "exit":
				return nil
			}

			if err := handler.HandleLine(ctx, writer, line); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

func (c *CLIListener) ensureInputReady() {
	if c.rl != nil || c.fallback != nil {
		return
	}
	rl, err := newReadline(c.in, c.out, c.historyPath)
	if err == nil {
		c.rl = rl
		return
	}
	c.fallback = bufio.NewReader(c.in)
}

func (c *CLIListener) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.rl != nil {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}
		return line, nil
	}

	if _, err := fmt.Fprint(c.out, defaultReplPrompt); err != nil {
		return "", err
	}
	line, err := c.fallback.ReadString('\n')
	if err != nil {
		if len(line) > 0 {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (c *CLIListener) readInputLoop(ctx context.Context, out chan<- inputEvent) {
	defer close(out)
	for {
		line, err := c.readLine(ctx)
		select {
		case out <- inputEvent{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

type inputEvent struct {
	line string
	err  error
}

func newReadline(in io.Reader, out io.Writer, historyPath string) (*readline.Instance, error) {
	stdin, ok := in.(io.ReadCloser)
	if !ok {
		return nil, fmt.Errorf("stdin is not read-closer")
	}
	inFile, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(inFile.Fd())) {
		return nil, fmt.Errorf("stdin is not terminal")
	}
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return nil, fmt.Errorf("stdout is not terminal")
	}

	return readline.NewEx(&readline.Config{
		Prompt:          defaultReplPrompt,
		HistoryFile:     historyPath,
		HistoryLimit:    200,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           stdin,
		Stdout:          out,
		Stderr:          out,
	})
}
