package ports

import (
	"context"

	"pyconsole/internal/domain/execution"
)

// PackageInstaller installs Python packages through the host package manager.
type PackageInstaller interface {
	Install(ctx context.Context, requirement string) (*execution.InstallResult, error)
}
