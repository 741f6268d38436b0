package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rahul/nexus/internal/confirm"
	"github.com/rahul/nexus/internal/pipeline"
)

// Terminal is the local textual surface: it reads one command per line,
// runs the pipeline, and reports the plan, the confirmation prompt and the
// per-step results in that order. The confirmation question reads from the
// same buffered stream as the command loop.
type Terminal struct {
	Pipe *pipeline.Pipeline
	Out  io.Writer

	reader  *bufio.Reader
	stopped chan struct{}
}

func NewTerminal(pipe *pipeline.Pipeline, in io.Reader, out io.Writer) *Terminal {
	reader := bufio.NewReader(in)
	t := &Terminal{
		Pipe:    pipe,
		Out:     out,
		reader:  reader,
		stopped: make(chan struct{}),
	}
	// The terminal owns stdin; the confirmer shares its buffered reader
	// so a typed-ahead command is never swallowed by the prompt.
	pipe.Confirmer = confirm.NewTerminal(reader, out)
	return t
}

func (t *Terminal) Start() error {
	fmt.Fprintln(t.Out, "Ready. Type a command, or \"exit\" to quit.")

	for {
		select {
		case <-t.stopped:
			return nil
		default:
		}

		fmt.Fprint(t.Out, "you> ")
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil // EOF ends the session
		}
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		if raw == "exit" || raw == "quit" {
			return nil
		}

		turn, err := t.Pipe.Run(context.Background(), raw)
		if err != nil {
			log.Printf("audit warning: %v", err)
		}
		t.report(turn)
	}
}

func (t *Terminal) report(turn *pipeline.Turn) {
	for _, res := range turn.Results {
		mark := "✅"
		if !res.Succeeded() {
			mark = "❌"
		}
		fmt.Fprintf(t.Out, "  %s %s — %s\n", mark, res.Step.Kind, res.Detail)
	}
	fmt.Fprintf(t.Out, "nexus> %s\n", turn.Reply)
}

func (t *Terminal) Send(sessionID string, text string) error {
	_, err := fmt.Fprintln(t.Out, text)
	return err
}

func (t *Terminal) Stop() error {
	close(t.stopped)
	return nil
}
