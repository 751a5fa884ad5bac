package command

import (
	"context"

	"github.com/jfschaefer/GLIFcore/internal/items"
)

// ExecFunc runs a command without upstream items.
type ExecFunc func(ctx context.Context, inv Invocation) *items.Items

// ApplyFunc runs a command against an upstream batch.
type ApplyFunc func(ctx context.Context, inv Invocation, in *items.Items) *items.Items

// ItemFunc runs a command once. it is nil when there is no input item.
type ItemFunc func(ctx context.Context, inv Invocation, it *items.Item) *items.Items

// Shape names the execution shapes a handler supports.
type Shape int

const (
	ShapeExecute Shape = iota + 1
	ShapeApply
	ShapeBoth
	ShapePerItem
)

func (s Shape) String() string {
	switch s {
	case ShapeExecute:
		return "execute"
	case ShapeApply:
		return "apply"
	case ShapeBoth:
		return "execute+apply"
	case ShapePerItem:
		return "per-item"
	default:
		return "none"
	}
}

// Handler is the behavior bound to a command type. Build one with
// ExecuteOnly, ApplyOnly, ExecuteAndApply or PerItem.
type Handler struct {
	shape Shape
	exec  ExecFunc
	apply ApplyFunc
}

// ExecuteOnly handles commands that never take piped input.
func ExecuteOnly(fn ExecFunc) Handler {
	return Handler{shape: ShapeExecute, exec: fn}
}

// ApplyOnly handles commands that always work on an input batch.
func ApplyOnly(fn ApplyFunc) Handler {
	return Handler{shape: ShapeApply, apply: fn}
}

// ExecuteAndApply handles commands with separate standalone and piped behavior.
func ExecuteAndApply(exec ExecFunc, apply ApplyFunc) Handler {
	return Handler{shape: ShapeBoth, exec: exec, apply: apply}
}

// PerItem builds both shapes from one function: standalone it runs with a
// nil item, piped it runs once per item and concatenates the results.
// Positional arguments, when given, become the input items.
func PerItem(fn ItemFunc) Handler {
	return Handler{
		shape: ShapePerItem,
		exec: func(ctx context.Context, inv Invocation) *items.Items {
			return fn(ctx, inv, nil)
		},
		apply: func(ctx context.Context, inv Invocation, in *items.Items) *items.Items {
			return in.FlatMap(func(it *items.Item) *items.Items {
				return fn(ctx, inv, it)
			})
		},
	}
}
