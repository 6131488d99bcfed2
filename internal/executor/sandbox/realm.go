package sandbox

import (
	"fmt"

	"github.com/dop251/goja"
)

// realm is a fresh JavaScript global environment. Helpers are captured
// before any user code runs, so scripts cannot shadow or replace them, and
// none of them is reachable from the global object.
type realm struct {
	vm     *goja.Runtime
	get    goja.Callable // (object, key) => object[key]
	number goja.Callable // the Number builtin
}

// binding is a global property introduced by an evaluated script.
type binding struct {
	name  string
	value goja.Value
}

func newRealm() (*realm, error) {
	vm := goja.New()

	getter, err := vm.RunString("(function (o, k) { return o[k]; })")
	if err != nil {
		return nil, fmt.Errorf("sandbox: compiling property reader: %w", err)
	}
	get, ok := goja.AssertFunction(getter)
	if !ok {
		return nil, fmt.Errorf("sandbox: property reader is not callable")
	}
	number, ok := goja.AssertFunction(vm.Get("Number"))
	if !ok {
		return nil, fmt.Errorf("sandbox: Number builtin is not callable")
	}

	return &realm{vm: vm, get: get, number: number}, nil
}

// evaluate runs src as a top-level script named name and returns the global
// properties it introduced, in creation order.
func (r *realm) evaluate(name, src string) ([]binding, error) {
	global := r.vm.GlobalObject()

	before := make(map[string]struct{})
	for _, key := range global.Keys() {
		before[key] = struct{}{}
	}

	if _, err := r.vm.RunScript(name, src); err != nil {
		return nil, err
	}

	var introduced []binding
	for _, key := range global.Keys() {
		if _, ok := before[key]; ok {
			continue
		}
		value, err := r.property(global, key)
		if err != nil {
			return nil, err
		}
		introduced = append(introduced, binding{name: key, value: value})
	}
	return introduced, nil
}

// property reads obj[key]. Accessors run as script code, so their
// exceptions come back as errors.
func (r *realm) property(obj *goja.Object, key string) (goja.Value, error) {
	return r.get(goja.Undefined(), obj, r.vm.ToValue(key))
}

// toNumber applies the Number builtin to v.
func (r *realm) toNumber(v goja.Value) (float64, error) {
	n, err := r.number(goja.Undefined(), v)
	if err != nil {
		return 0, err
	}
	return n.ToFloat(), nil
}

// errorMessage extracts the message of a thrown value without running
// user-defined conversions on it.
func (r *realm) errorMessage(exc *goja.Exception) string {
	val := exc.Value()
	obj, isObj := val.(*goja.Object)
	if !isObj {
		if val == nil {
			return "Uncaught exception"
		}
		return val.String()
	}
	msg, err := r.property(obj, "message")
	if _, msgIsObj := msg.(*goja.Object); err == nil && msg != nil && !msgIsObj {
		if s, ok := msg.Export().(string); ok {
			return s
		}
	}
	return "Uncaught exception"
}
