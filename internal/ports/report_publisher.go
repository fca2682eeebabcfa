package ports

import (
	"context"

	"pyconsole/internal/domain/execution"
)

// ReportPublisher publishes execution reports to an external system.
type ReportPublisher interface {
	PublishRunReport(ctx context.Context, report execution.RunReport) error
	PublishConsoleReport(ctx context.Context, report execution.ConsoleReport) error
	PublishInstallReport(ctx context.Context, report execution.InstallReport) error
	Close() error
}
