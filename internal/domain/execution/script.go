package execution

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MaxScriptBytes bounds the size of an uploaded script.
const MaxScriptBytes = 1 << 20

// Status summarises how a headless script run ended.
type Status string

const (
	StatusOK           Status = "OK"
	StatusRuntimeError Status = "RE"
	StatusTimeLimit    Status = "TL"
	StatusMemoryLimit  Status = "ML"
)

// Script is a Python program executed headless, without input mediation.
type Script struct {
	ID     string
	Name   string
	Source string
	Limits RunLimits
}

// ScriptResult captures the outcome of a headless script run.
type ScriptResult struct {
	Status   Status
	Stdout   string
	Stderr   string
	ExitCode int64
	Duration time.Duration
}

// LoadScript reads the Python file at path into a Script named after the file.
func LoadScript(path string) (Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Script{}, fmt.Errorf("stat script: %w", err)
	}
	if info.IsDir() {
		return Script{}, fmt.Errorf("script path %s is a directory", path)
	}
	if info.Size() > MaxScriptBytes {
		return Script{}, fmt.Errorf("script %s exceeds %d bytes", path, MaxScriptBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}

	name := filepath.Base(path)
	return Script{
		ID:     name,
		Name:   name,
		Source: string(data),
	}, nil
}

// StatusForExit maps a process exit code onto a Status.
func StatusForExit(exitCode int64) Status {
	if exitCode != 0 {
		return StatusRuntimeError
	}
	return StatusOK
}
