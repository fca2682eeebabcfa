package harness

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"pyconsole/internal/domain/execution"
)

// Marker prefixes every protocol line written by the harness.
const Marker = "\x1epyconsole:"

// ErrNoResult is returned when the harness stream ends without a result message.
var ErrNoResult = errors.New("harness exited without reporting a result")

type message struct {
	Event       string `json:"event"`
	Prompt      string `json:"prompt"`
	Termination string `json:"termination"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	Diagnostic  string `json:"diagnostic"`
}

type reply struct {
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
}

// Converse drives one harness run: it reads protocol lines from r, answers
// input requests on w using resolve, and returns the reported Outcome.
//
// Lines without the protocol marker come from output that bypassed the
// harness capture (for example child processes or os.write). They are
// appended after the captured stdout, not interleaved with it.
func Converse(r io.Reader, w io.Writer, resolve execution.InputResolver) (*execution.Outcome, error) {
	// Lines are read whole: the result message carries all captured
	// output, so no line length is imposed.
	reader := bufio.NewReaderSize(r, 64*1024)

	var stray strings.Builder
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read harness output: %w", readErr)
		}
		if line == "" && readErr != nil {
			return nil, ErrNoResult
		}
		line = strings.TrimSuffix(line, "\n")

		idx := strings.Index(line, Marker)
		if idx < 0 {
			stray.WriteString(line)
			stray.WriteByte('\n')
			if readErr != nil {
				return nil, ErrNoResult
			}
			continue
		}
		stray.WriteString(line[:idx])

		var msg message
		if err := json.Unmarshal([]byte(line[idx+len(Marker):]), &msg); err != nil {
			return nil, fmt.Errorf("decode harness message: %w", err)
		}

		switch msg.Event {
		case "input":
			if err := answer(w, msg.Prompt, resolve); err != nil {
				return nil, err
			}
		case "result":
			return msg.toOutcome(stray.String())
		default:
			return nil, fmt.Errorf("unknown harness event %q", msg.Event)
		}

		if readErr != nil {
			return nil, ErrNoResult
		}
	}
}

func answer(w io.Writer, prompt string, resolve execution.InputResolver) error {
	var resp reply
	if resolve != nil {
		resp.Value, resp.OK = resolve(prompt)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode input reply: %w", err)
	}
	payload = append(payload, '\n')
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write input reply: %w", err)
	}
	return nil
}

func (m message) toOutcome(stray string) (*execution.Outcome, error) {
	outcome := &execution.Outcome{
		Termination: execution.Termination(m.Termination),
		Stdout:      m.Stdout + stray,
		Stderr:      m.Stderr,
		Diagnostic:  m.Diagnostic,
		Prompt:      m.Prompt,
	}

	switch outcome.Termination {
	case execution.TerminationCompleted, execution.TerminationRaised, execution.TerminationSyntax:
	case execution.TerminationAborted:
		outcome.Stdout = ""
	default:
		return nil, fmt.Errorf("unknown harness termination %q", m.Termination)
	}
	return outcome, nil
}
