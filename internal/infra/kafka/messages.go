package kafka

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"pyconsole/internal/domain/execution"
)

const (
	messageTypeScript = "script"
	messageTypeDone   = "done"

	languagePython = "python"
)

// Report kinds carried in the "kind" field of every published envelope.
const (
	reportKindRun     = "run"
	reportKindConsole = "console"
	reportKindInstall = "install"
)

type scriptEnvelope struct {
	Type     string        `json:"type"`
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Language string        `json:"language,omitempty"`
	Source   string        `json:"source"`
	Limits   *scriptLimits `json:"limits,omitempty"`
}

type scriptLimits struct {
	TimeLimitMs      int64 `json:"time_limit_ms"`
	MemoryLimitBytes int64 `json:"memory_limit_bytes"`
}

type runEnvelope struct {
	Kind       string           `json:"kind"`
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Status     execution.Status `json:"status,omitempty"`
	ExitCode   *int64           `json:"exit_code,omitempty"`
	Stdout     string           `json:"stdout,omitempty"`
	Stderr     string           `json:"stderr,omitempty"`
	DurationMs *int64           `json:"duration_ms,omitempty"`
	Error      string           `json:"error,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

type consoleEnvelope struct {
	Kind       string         `json:"kind"`
	SessionID  string         `json:"session_id"`
	Source     string         `json:"source"`
	Result     execution.Kind `json:"result"`
	Stdout     string         `json:"stdout,omitempty"`
	Diagnostic string         `json:"diagnostic,omitempty"`
	Pending    []string       `json:"pending,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}

type installEnvelope struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id,omitempty"`
	Package   string    `json:"package,omitempty"`
	OK        bool      `json:"ok"`
	ExitCode  *int64    `json:"exit_code,omitempty"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func decodeScriptMessage(msg kafkago.Message) (execution.Script, error) {
	var envelope scriptEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return execution.Script{}, fmt.Errorf("decode message: %w", err)
	}

	msgType := envelope.Type
	if msgType == "" {
		msgType = messageTypeScript
	}

	switch msgType {
	case messageTypeScript:
		return envelope.toScript(msg)
	case messageTypeDone:
		return execution.Script{}, io.EOF
	default:
		return execution.Script{}, fmt.Errorf("unknown message type %q", msgType)
	}
}

func (e scriptEnvelope) toScript(msg kafkago.Message) (execution.Script, error) {
	if e.Source == "" {
		return execution.Script{}, fmt.Errorf("script message missing source")
	}
	if e.Language != "" && !strings.EqualFold(e.Language, languagePython) {
		return execution.Script{}, fmt.Errorf("unsupported script language %q", e.Language)
	}
	if len(e.Source) > execution.MaxScriptBytes {
		return execution.Script{}, fmt.Errorf("script message exceeds %d bytes", execution.MaxScriptBytes)
	}

	scriptID := e.ID
	if scriptID == "" {
		scriptID = string(msg.Key)
	}
	if scriptID == "" {
		scriptID = fmt.Sprintf("%s:%d", msg.Topic, msg.Offset)
	}

	name := e.Name
	if name == "" {
		name = scriptID
	}

	return execution.Script{
		ID:     scriptID,
		Name:   name,
		Source: e.Source,
		Limits: e.toLimits(),
	}, nil
}

func (e scriptEnvelope) toLimits() execution.RunLimits {
	if e.Limits == nil {
		return execution.RunLimits{}
	}

	var limits execution.RunLimits
	if e.Limits.TimeLimitMs > 0 {
		limits.TimeLimit = time.Duration(e.Limits.TimeLimitMs) * time.Millisecond
	}
	if e.Limits.MemoryLimitBytes > 0 {
		limits.MemoryLimitBytes = e.Limits.MemoryLimitBytes
	}
	return limits
}

func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return payload, nil
}

func makeRunEnvelope(report execution.RunReport, now time.Time) runEnvelope {
	envelope := runEnvelope{
		Kind:      reportKindRun,
		ID:        report.Script.ID,
		Name:      report.Script.Name,
		Error:     errorText(report.Err),
		Timestamp: now.UTC(),
	}

	if report.Result != nil {
		exit := report.Result.ExitCode
		envelope.ExitCode = &exit

		dur := report.Result.Duration.Milliseconds()
		envelope.DurationMs = &dur

		envelope.Stdout = report.Result.Stdout
		envelope.Stderr = report.Result.Stderr
		envelope.Status = report.Result.Status
	}

	return envelope
}

func makeConsoleEnvelope(report execution.ConsoleReport, now time.Time) consoleEnvelope {
	at := report.At
	if at.IsZero() {
		at = now
	}

	return consoleEnvelope{
		Kind:       reportKindConsole,
		SessionID:  report.SessionID,
		Source:     report.Source,
		Result:     report.Result.Kind,
		Stdout:     report.Result.Stdout,
		Diagnostic: report.Result.Diagnostic,
		Pending:    report.Result.Pending,
		DurationMs: report.Result.Duration.Milliseconds(),
		Timestamp:  at.UTC(),
	}
}

func makeInstallEnvelope(report execution.InstallReport, now time.Time) installEnvelope {
	at := report.At
	if at.IsZero() {
		at = now
	}

	envelope := installEnvelope{
		Kind:      reportKindInstall,
		SessionID: report.SessionID,
		Error:     errorText(report.Err),
		Timestamp: at.UTC(),
	}

	if report.Result != nil {
		exit := report.Result.ExitCode
		envelope.ExitCode = &exit
		envelope.Package = report.Result.Package
		envelope.OK = report.Result.OK
		envelope.Output = report.Result.Output
	}

	return envelope
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
