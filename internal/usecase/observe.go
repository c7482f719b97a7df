package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "wastenot/usecase"

const outcomeOK = "ok"

// 操作ごとにspanを張って、終わったら結果を記録する。
//
//	ctx, done := startOp(ctx, u.rec, "create_claim", branchID)
//	defer func() { done(err) }()
func startOp(ctx context.Context, rec OutcomeRecorder, op string, branchID string) (context.Context, func(error)) {
	if rec == nil {
		rec = NopRecorder{}
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	span.SetAttributes(
		attribute.String("wastenot.operation", op),
		attribute.String("wastenot.branch_id", branchID),
	)

	return ctx, func(err error) {
		outcome := outcomeOK
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("wastenot.outcome", outcome))
		rec.Record(op, outcome)
		span.End()
	}
}
