package sink

import (
	"context"

	"companion-cli/internal/model"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Traced wraps a sink with a span per submission.
type Traced struct {
	next   Sink
	tracer trace.Tracer
	driver string
}

func NewTraced(next Sink, tracer trace.Tracer, driver string) *Traced {
	return &Traced{next: next, tracer: tracer, driver: driver}
}

func (t *Traced) Submit(ctx context.Context, it model.Item) error {
	ctx, span := t.tracer.Start(ctx, "capture.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("capture.sink", t.driver),
			attribute.String("capture.item_id", it.ID),
			attribute.String("capture.kind", string(it.Kind)),
			attribute.Bool("capture.delegated", it.Metadata.Delegated),
			attribute.Int("capture.chars", len([]rune(it.Content))),
		),
	)
	defer span.End()

	err := t.next.Submit(ctx, it)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (t *Traced) Close() error { return t.next.Close() }
