package dispatchkit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/randalmurphal/dispatchkit/pkg/dispatchkit"
)

func noopHandler() dispatchkit.Handler {
	return dispatchkit.HandlerFunc(func(context.Context, *dispatchkit.Envelope) (map[string]any, error) {
		return nil, nil
	})
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := dispatchkit.NewRegistry()

	if err := r.Register("user.create", noopHandler()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.Has("user.create") {
		t.Error("Has(user.create) = false")
	}
	if _, err := r.Resolve("user.create"); err != nil {
		t.Errorf("Resolve: %v", err)
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := dispatchkit.NewRegistry()
	if err := r.Register("user.create", noopHandler()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	err := r.Register("user.create", noopHandler())
	if err == nil {
		t.Fatal("expected error on duplicate registration")
	}
	var derr *dispatchkit.Error
	if !errors.As(err, &derr) || derr.Kind != dispatchkit.KindConfiguration {
		t.Errorf("expected configuration error, got %v", err)
	}

	// The original binding must be untouched.
	if _, rerr := r.Resolve("user.create"); rerr != nil {
		t.Errorf("original binding lost: %v", rerr)
	}
}

func TestRegistryRejectsBadBindings(t *testing.T) {
	r := dispatchkit.NewRegistry()
	if err := r.Register("", noopHandler()); err == nil {
		t.Error("expected error for empty event type")
	}
	if err := r.Register("user.create", nil); err == nil {
		t.Error("expected error for nil handler")
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := dispatchkit.NewRegistry()
	_, err := r.Resolve("ghost.event")
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
	var derr *dispatchkit.Error
	if !errors.As(err, &derr) || derr.Kind != dispatchkit.KindUnknownEventType {
		t.Errorf("expected unknown-event-type error, got %v", err)
	}
	if derr.Retryable {
		t.Error("unknown event type must not be retryable")
	}
}

func TestRegistrySeal(t *testing.T) {
	r := dispatchkit.NewRegistry()
	if err := r.Register("user.create", noopHandler()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Seal()

	if !r.Sealed() {
		t.Error("Sealed() = false after Seal")
	}
	if err := r.Register("late.op", noopHandler()); err == nil {
		t.Error("expected error registering into sealed registry")
	}
	// Resolution keeps working after seal.
	if _, err := r.Resolve("user.create"); err != nil {
		t.Errorf("Resolve after seal: %v", err)
	}
}

func TestRegistryTypes(t *testing.T) {
	r := dispatchkit.NewRegistry()
	for _, et := range []string{"payment.process", "user.create", "notification.send"} {
		if err := r.Register(et, noopHandler()); err != nil {
			t.Fatalf("Register(%s): %v", et, err)
		}
	}

	types := r.Types()
	want := []string{"notification.send", "payment.process", "user.create"}
	if len(types) != len(want) {
		t.Fatalf("Types() returned %d entries, want %d", len(types), len(want))
	}
	for i, et := range want {
		if types[i] != et {
			t.Errorf("Types()[%d] = %q, want %q", i, types[i], et)
		}
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	r := dispatchkit.NewRegistry()
	r.MustRegister("user.create", noopHandler())

	defer func() {
		if recover() == nil {
			t.Error("expected panic from duplicate MustRegister")
		}
	}()
	r.MustRegister("user.create", noopHandler())
}
