package routing

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type shape interface {
	Area() int
}

type square struct {
	Side int
}

func (s square) Area() int { return s.Side * s.Side }

func TestNewRegistryRejectsDuplicateType(t *testing.T) {
	first := Handle(func(_ context.Context, x int) (int, error) { return x, nil })
	second := Handle(func(_ context.Context, x int) (string, error) { return "second", nil })

	_, err := NewRegistry(first, second)
	if !errors.Is(err, ErrDuplicateHandler) {
		t.Fatalf("expected ErrDuplicateHandler, got %v", err)
	}
}

func TestNewRegistryRejectsInvalidBindings(t *testing.T) {
	tests := []struct {
		name    string
		binding Binding
	}{
		{name: "nil type", binding: Bind(nil, func(context.Context, any) (any, error) { return nil, nil })},
		{name: "nil handler", binding: Bind(reflect.TypeFor[int](), nil)},
		{name: "nil typed handler", binding: Handle[int, int](nil)},
		{name: "interface type", binding: Handle(func(_ context.Context, s shape) (int, error) { return s.Area(), nil })},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.binding)
			if !errors.Is(err, ErrInvalidBinding) {
				t.Fatalf("expected ErrInvalidBinding, got %v", err)
			}
		})
	}
}

func TestRegistryLookupExactTypeOnly(t *testing.T) {
	r, err := NewRegistry(Handle(func(_ context.Context, s square) (int, error) { return s.Area(), nil }))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if _, ok := r.Lookup(reflect.TypeFor[square]()); !ok {
		t.Fatalf("expected handler for square")
	}
	if _, ok := r.Lookup(reflect.TypeFor[*square]()); ok {
		t.Fatalf("expected no handler for *square")
	}
	if _, ok := r.Lookup(reflect.TypeFor[shape]()); ok {
		t.Fatalf("expected no handler for shape interface")
	}
	if _, ok := r.Lookup(nil); ok {
		t.Fatalf("expected no handler for nil type")
	}
}

func TestRegistrySubscriptionsAreExactKeysAndStable(t *testing.T) {
	r, err := NewRegistry(
		Handle(func(_ context.Context, s string) (string, error) { return s, nil }),
		Handle(func(_ context.Context, x int) (int, error) { return x, nil }),
		Handle(func(_ context.Context, s square) (int, error) { return s.Area(), nil }),
	)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	want := []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[square](), reflect.TypeFor[string]()}
	got := r.Subscriptions()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected subscriptions %v, got %v", want, got)
	}
	if r.Len() != len(want) {
		t.Fatalf("expected len %d, got %d", len(want), r.Len())
	}

	got[0] = reflect.TypeFor[float64]()
	if again := r.Subscriptions(); !reflect.DeepEqual(again, want) {
		t.Fatalf("expected subscriptions unchanged after caller mutation, got %v", again)
	}
}

func TestEmptyRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if subs := r.Subscriptions(); len(subs) != 0 {
		t.Fatalf("expected no subscriptions, got %v", subs)
	}
}
