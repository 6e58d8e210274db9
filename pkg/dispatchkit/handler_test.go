package dispatchkit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

type greetPayload struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestTypedHandlerDecodesPayload(t *testing.T) {
	h := dispatchkit.Typed(func(_ context.Context, p greetPayload, _ *dispatchkit.Envelope) (map[string]any, error) {
		return map[string]any{"greeting": "hello " + p.Name}, nil
	})

	env := dispatchkit.NewEnvelope("greet", map[string]any{"name": "Ada", "age": 36})
	result, err := h.Handle(context.Background(), env)

	require.NoError(t, err)
	assert.Equal(t, "hello Ada", result["greeting"])
}

func TestTypedHandlerRejectsMismatchedPayload(t *testing.T) {
	h := dispatchkit.Typed(func(_ context.Context, p greetPayload, _ *dispatchkit.Envelope) (map[string]any, error) {
		return nil, nil
	})

	env := dispatchkit.NewEnvelope("greet", map[string]any{"age": "not a number"})
	_, err := h.Handle(context.Background(), env)

	require.Error(t, err)
	var derr *dispatchkit.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatchkit.KindInvalidEnvelope, derr.Kind)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) dispatchkit.Middleware {
		return func(next dispatchkit.Handler) dispatchkit.Handler {
			return dispatchkit.HandlerFunc(func(ctx context.Context, env *dispatchkit.Envelope) (map[string]any, error) {
				order = append(order, name+" before")
				result, err := next.Handle(ctx, env)
				order = append(order, name+" after")
				return result, err
			})
		}
	}

	h := dispatchkit.Chain(
		dispatchkit.HandlerFunc(func(context.Context, *dispatchkit.Envelope) (map[string]any, error) {
			order = append(order, "handler")
			return nil, nil
		}),
		mw("a"), mw("b"),
	)

	_, err := h.Handle(context.Background(), dispatchkit.NewEnvelope("x", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a before", "b before", "handler", "b after", "a after"}, order)
}

func TestRecoverMiddleware(t *testing.T) {
	h := dispatchkit.Chain(
		dispatchkit.HandlerFunc(func(context.Context, *dispatchkit.Envelope) (map[string]any, error) {
			panic("boom")
		}),
		dispatchkit.RecoverMiddleware(),
	)

	_, err := h.Handle(context.Background(), dispatchkit.NewEnvelope("x", nil))
	require.Error(t, err)
	var derr *dispatchkit.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatchkit.KindHandler, derr.Kind)
	assert.Contains(t, derr.Message, "boom")
}
