package rowguard

import (
	"context"
	"fmt"
	"reflect"
)

// TokenManager is the validity check the proxy runs before guarded work.
// *RefreshGuard satisfies it.
type TokenManager interface {
	EnsureValid() error
}

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// Wrap classifies a value once and returns its guarded form:
//
//   - plain data (strings, numbers, booleans, byte slices, slices, arrays,
//     maps, nil, errors) comes back unchanged; data is never proxied, so
//     equality and identity semantics survive;
//   - functions come back as a *Callable that validates the credential
//     before invoking and wraps what the function returns;
//   - anything else (sub-clients, query builders, chain nodes) comes back as
//     an *Object forwarding attribute access and wrapping the results.
//
// Wrapping an already wrapped value returns it as-is, so Wrap is idempotent.
func Wrap(value any, tm TokenManager) any {
	if value == nil {
		return nil
	}
	switch value.(type) {
	case *Object, *Callable, error:
		return value
	}
	rv := reflect.ValueOf(value)
	if isPlainData(rv.Kind()) {
		return value
	}
	if rv.Kind() == reflect.Func {
		return newCallable(rv, tm)
	}
	return &Object{target: rv, tm: tm}
}

func isPlainData(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String,
		reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return true
	default:
		return false
	}
}

// Callable is a guarded function. Whether it takes a context is decided once
// here, at wrap time; calls with a context have cancellation honored before
// the validity check runs.
type Callable struct {
	fn           reflect.Value
	tm           TokenManager
	takesContext bool
}

func newCallable(fn reflect.Value, tm TokenManager) *Callable {
	t := fn.Type()
	takesCtx := t.NumIn() > 0 && t.In(0) == contextType
	return &Callable{fn: fn, tm: tm, takesContext: takesCtx}
}

// Invoke validates the credential, calls the underlying function, and
// returns its results with non-data values wrapped. An error result from the
// function is split out as Invoke's error.
func (c *Callable) Invoke(args ...any) ([]any, error) {
	if c.takesContext && len(args) > 0 {
		if ctx, ok := args[0].(context.Context); ok && ctx != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if err := c.tm.EnsureValid(); err != nil {
		return nil, err
	}
	in, err := c.buildArgs(args)
	if err != nil {
		return nil, err
	}
	outs := c.fn.Call(in)

	var results []any
	var callErr error
	for _, out := range outs {
		if out.Type().Implements(errorType) {
			if !out.IsNil() {
				callErr = out.Interface().(error)
			}
			continue
		}
		results = append(results, Wrap(out.Interface(), c.tm))
	}
	return results, callErr
}

func (c *Callable) buildArgs(args []any) ([]reflect.Value, error) {
	t := c.fn.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("rowguard: %s wants at least %d args, got %d", t, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("rowguard: %s wants %d args, got %d", t, fixed, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if i < fixed {
			want = t.In(i)
		} else {
			want = t.In(t.NumIn() - 1).Elem()
		}
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		if obj, ok := arg.(*Object); ok {
			arg = obj.Unwrap()
		}
		av := reflect.ValueOf(arg)
		switch {
		case av.Type().AssignableTo(want):
			in[i] = av
		case av.Type().ConvertibleTo(want):
			in[i] = av.Convert(want)
		default:
			return nil, fmt.Errorf("rowguard: arg %d: cannot use %s as %s", i, av.Type(), want)
		}
	}
	return in, nil
}

// Object forwards attribute access to an arbitrary wrapped value. Methods
// come back as guarded Callables, struct fields as recursively wrapped
// values, so multi-step fluent chains stay guarded at every step without the
// proxy enumerating each chain type.
type Object struct {
	target reflect.Value
	tm     TokenManager
}

// Unwrap returns the underlying value.
func (o *Object) Unwrap() any {
	return o.target.Interface()
}

// Get resolves a method or exported field by name.
func (o *Object) Get(name string) (any, error) {
	if m := o.target.MethodByName(name); m.IsValid() {
		return newCallable(m, o.tm), nil
	}
	v := o.target
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("rowguard: nil %s has no attribute %q", o.target.Type(), name)
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
			return Wrap(f.Interface(), o.tm), nil
		}
	}
	return nil, fmt.Errorf("rowguard: %s has no attribute %q", o.target.Type(), name)
}

// Call resolves name and invokes it with args.
func (o *Object) Call(name string, args ...any) ([]any, error) {
	attr, err := o.Get(name)
	if err != nil {
		return nil, err
	}
	callable, ok := attr.(*Callable)
	if !ok {
		return nil, fmt.Errorf("rowguard: attribute %q of %s is not callable", name, o.target.Type())
	}
	return callable.Invoke(args...)
}

func (o *Object) String() string {
	return fmt.Sprintf("Object(%s)", o.target.Type())
}
