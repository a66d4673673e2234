package httpapi

import (
	"context"
)

type authContextKey string

const operatorKey authContextKey = "operator"

// Operator is the caller of an operator route.
type Operator struct {
	Name string
}

func withOperator(ctx context.Context, op *Operator) context.Context {
	if op == nil {
		return ctx
	}
	return context.WithValue(ctx, operatorKey, op)
}

func operatorFromContext(ctx context.Context) *Operator {
	val := ctx.Value(operatorKey)
	if v, ok := val.(*Operator); ok {
		return v
	}
	return nil
}
