// Package harness owns the Python side of console evaluation: the embedded
// harness script that shadows input(), and the line protocol the host uses to
// answer its input requests.
package harness

import (
	_ "embed"
)

// Script is the harness program executed by every evaluator backend.
//
//go:embed harness.py
var Script []byte

const (
	// ScriptFilename is the name the harness is written under.
	ScriptFilename = "pyconsole_harness.py"
	// ProgramFilename is the name the console source is written under.
	ProgramFilename = "program.py"
)

// File is a named file an evaluator must place next to each other before
// starting the interpreter.
type File struct {
	Name string
	Mode int64
	Data []byte
}

// Files returns the harness and the program source to materialise in the
// working directory.
func Files(source string) []File {
	return []File{
		{Name: ScriptFilename, Mode: 0o644, Data: Script},
		{Name: ProgramFilename, Mode: 0o644, Data: []byte(source)},
	}
}

// Command returns the interpreter invocation for the given python binary.
// Paths are relative to the working directory holding Files.
func Command(python string) []string {
	return []string{python, "-u", ScriptFilename, ProgramFilename}
}
