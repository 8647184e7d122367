package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
	"github.com/joseph-ayodele/legaldocs/internal/progress"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one file waiting for a worker.
type Job struct {
	Request     pipeline.Request
	SubmittedAt time.Time
	TraceID     string // request id carried into worker logs

	// Sink receives extraction progress; nil discards it.
	Sink progress.Sink
	// Done, when set, is called from the worker with the outcome.
	Done func(pipeline.Outcome, error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor is the part of pipeline.Processor the queue needs.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request, sink progress.Sink) (pipeline.Outcome, error)
}
