package ports

import (
	"context"

	"nyoka-packages/internal/types"
)

// PromptPort asks the user a yes/no question.
type PromptPort interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ReporterPort receives progress and intermediate results of long running
// client operations.
type ReporterPort interface {
	Closure(id types.ResourceID, closure types.Closure)
	Progress(id types.ResourceID, done int64, total int64)
}
