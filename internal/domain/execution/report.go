package execution

import "time"

// RunReport captures the outcome of executing a Script.
type RunReport struct {
	Script Script
	Result *ScriptResult
	Err    error
}

// ConsoleReport captures one interactive console execution attempt.
type ConsoleReport struct {
	SessionID string
	Source    string
	Result    Result
	At        time.Time
}

// InstallReport captures one package installation.
type InstallReport struct {
	SessionID string
	Result    *InstallResult
	Err       error
	At        time.Time
}
