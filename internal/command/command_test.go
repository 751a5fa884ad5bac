package command

import (
	"context"
	"strings"
	"testing"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

func upper(ctx context.Context, inv Invocation, it *items.Item) *items.Items {
	if it == nil {
		return items.FromValues(items.ReprAST, []string{"generated"})
	}
	v := it.Resolve(items.ReprSentence)
	return items.NewItems(it.Clone().WithRepr(items.ReprAST, strings.ToUpper(v)))
}

func TestPerItem(t *testing.T) {
	typ := Define(Type{
		Names:   []string{"parse", "p"},
		MaxArgs: Unbounded,
		Input:   items.ReprSentence,
		Handler: PerItem(upper),
	})
	ctx := context.Background()

	t.Run("main args become items", func(t *testing.T) {
		c, _, err := typ.Parse(`p "a b" c`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := c.Execute(ctx).Values()
		if len(got) != 2 || got[0] != "A B" || got[1] != "C" {
			t.Errorf("Execute = %q", got)
		}
	})

	t.Run("standalone without args", func(t *testing.T) {
		c, _, err := typ.Parse("p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.Execute(ctx).Values(); len(got) != 1 || got[0] != "generated" {
			t.Errorf("Execute = %q", got)
		}
	})

	t.Run("piped", func(t *testing.T) {
		c, _, err := typ.Parse("p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := c.Apply(ctx, items.FromValues(items.ReprSentence, []string{"x", "y"}))
		if got := out.Values(); len(got) != 2 || got[0] != "X" || got[1] != "Y" {
			t.Errorf("Apply = %q", got)
		}
	})

	t.Run("positional args win over piped items", func(t *testing.T) {
		c, _, err := typ.Parse("p z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := c.Apply(ctx, items.FromValues(items.ReprSentence, []string{"x"}))
		if got := out.Values(); len(got) != 1 || got[0] != "z" {
			t.Errorf("Apply = %q", got)
		}
		if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "no input was expected for command parse (ignoring piped items)") {
			t.Errorf("Errors = %q", out.Errors)
		}
	})
}

func TestExecuteApplyFallbacks(t *testing.T) {
	ctx := context.Background()
	execOnly := Define(Type{Names: []string{"status"}, Handler: ExecuteOnly(echoExec)})
	applyOnly := Define(Type{
		Names: []string{"filter"},
		Handler: ApplyOnly(func(ctx context.Context, inv Invocation, in *items.Items) *items.Items {
			return in
		}),
	})

	c, err := execOnly.Bind(&cmdline.BasicCommand{Name: "status"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := c.Apply(ctx, items.FromValues(items.ReprAST, []string{"t"}))
	if len(out.Errors) != 1 || out.Errors[0] != "no input was expected for command status" {
		t.Errorf("Apply on execute-only: %q", out.Errors)
	}

	c, err = applyOnly.Bind(&cmdline.BasicCommand{Name: "filter"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out = c.Execute(ctx)
	if out.Len() != 0 || len(out.Errors) != 1 || out.Errors[0] != "no input was provided for command filter" {
		t.Errorf("Execute on apply-only: %d items, errors %q", out.Len(), out.Errors)
	}
}

func TestMainArgsAsItems(t *testing.T) {
	var seen []string
	construct := Define(Type{
		Names:           []string{"construct", "c"},
		MaxArgs:         Unbounded,
		Split:           cmdline.KeepTogether,
		Input:           items.ReprAST,
		MainArgsAsItems: true,
		Handler: ApplyOnly(func(ctx context.Context, inv Invocation, in *items.Items) *items.Items {
			seen = append(seen, in.Values()...)
			return in
		}),
	})
	c, _, err := construct.Parse("construct f (g x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Execute(context.Background())
	if len(seen) != 1 || seen[0] != "f (g x)" {
		t.Errorf("apply saw %q", seen)
	}

	// Without positional arguments the command still applies, to an empty batch.
	c, _, err = construct.Parse("construct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := c.Execute(context.Background()); out.Len() != 0 || len(out.Errors) != 0 {
		t.Errorf("Execute = %d items, errors %q", out.Len(), out.Errors)
	}
}

func TestExecuteAndApply(t *testing.T) {
	typ := Define(Type{
		Names: []string{"help"},
		Handler: ExecuteAndApply(
			func(ctx context.Context, inv Invocation) *items.Items {
				return items.FromValues(items.ReprDefault, []string{"exec"})
			},
			func(ctx context.Context, inv Invocation, in *items.Items) *items.Items {
				return items.FromValues(items.ReprDefault, []string{"apply"})
			},
		),
	})
	if typ.Handler.shape != ShapeBoth {
		t.Errorf("shape = %v", typ.Handler.shape)
	}
	c, _, err := typ.Parse("help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Execute(context.Background()).Values(); got[0] != "exec" {
		t.Errorf("Execute = %q", got)
	}
	if got := c.Apply(context.Background(), items.Empty()).Values(); got[0] != "apply" {
		t.Errorf("Apply = %q", got)
	}
}
