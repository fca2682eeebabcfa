package local

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"pyconsole/internal/domain/execution"
)

// Install implements ports.PackageInstaller with the configured install command.
func (b *Backend) Install(ctx context.Context, requirement string) (*execution.InstallResult, error) {
	name, err := execution.ValidatePackageName(requirement)
	if err != nil {
		return nil, err
	}

	argv := append(append([]string(nil), b.cfg.InstallCommand...), name)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.cfg.Workdir

	output, runErr := cmd.CombinedOutput()
	result := &execution.InstallResult{
		Package: name,
		OK:      runErr == nil,
		Output:  string(output),
	}
	if runErr == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = int64(exitErr.ExitCode())
		return result, nil
	}

	return nil, fmt.Errorf("run package manager: %w", runErr)
}
