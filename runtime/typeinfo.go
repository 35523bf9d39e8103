package runtime

import (
	"fmt"
	"reflect"
)

// opSet records which operators a host type supports. It is fixed when
// the type is registered; invoking anything outside the set is a typed
// error, never a crash.
type opSet struct {
	add, sub, mul, div bool
	ord                bool // < <= > >=
	eq                 bool // == !=
	incDec             bool
	neg                bool
	index              bool // element get/set
}

func opsForType(typ reflect.Type) opSet {
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return opSet{add: true, sub: true, mul: true, div: true, ord: true, eq: true, incDec: true, neg: true}
	case reflect.Bool:
		return opSet{eq: true}
	case reflect.String:
		return opSet{add: true, ord: true, eq: true, index: true}
	case reflect.Slice, reflect.Array:
		return opSet{index: true}
	case reflect.Struct:
		return opSet{eq: typ.Comparable()}
	default:
		return opSet{}
	}
}

type fieldAccessor struct {
	name  string
	index []int
}

type ctor struct {
	params []reflect.Type
	fn     reflect.Value
}

// TypeInfo describes one registered host type: its script-visible name,
// its Go type, the registered member accessors, methods and constructors,
// and the operator set picked at bind time.
type TypeInfo struct {
	name    string
	typ     reflect.Type
	reg     *Registry
	ops     opSet
	fields  map[string]fieldAccessor
	order   []string
	methods map[string]reflect.Method
	ctors   []ctor
}

// Name returns the script-visible type name.
func (info *TypeInfo) Name() string { return info.name }

// AddField registers a member accessor under name for the Go struct field
// goName.
func (info *TypeInfo) AddField(name, goName string) error {
	if info.typ.Kind() != reflect.Struct {
		return fmt.Errorf("type %q is not a struct, cannot bind field %q", info.name, name)
	}
	sf, ok := info.typ.FieldByName(goName)
	if !ok {
		return fmt.Errorf("type %s has no field %q", info.typ, goName)
	}
	if _, exists := info.fields[name]; exists {
		return fmt.Errorf("member %q is already bound on type %q", name, info.name)
	}
	info.fields[name] = fieldAccessor{name: name, index: sf.Index}
	info.order = append(info.order, name)
	return nil
}

// AddMethod registers the Go method goName (looked up on *T so both value
// and pointer receivers bind) under name.
func (info *TypeInfo) AddMethod(name, goName string) error {
	m, ok := reflect.PointerTo(info.typ).MethodByName(goName)
	if !ok {
		return fmt.Errorf("type %s has no method %q", info.typ, goName)
	}
	if _, exists := info.methods[name]; exists {
		return fmt.Errorf("method %q is already bound on type %q", name, info.name)
	}
	info.methods[name] = m
	return nil
}

// AddCtor registers a constructor: fn must be a func returning exactly one
// value of the registered type. Construction picks the first registered
// constructor whose arity and argument coercions all succeed.
func (info *TypeInfo) AddCtor(fn any) error {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() != 1 || ft.Out(0) != info.typ || ft.IsVariadic() {
		return fmt.Errorf("constructor for %q must be a func(...) %s", info.name, info.typ)
	}
	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	info.ctors = append(info.ctors, ctor{params: params, fn: fv})
	return nil
}

// Exemplar returns a zero-initialized Object of this type, usable both as
// a type token in scopes and as the template for declared variables.
func (info *TypeInfo) Exemplar() Object {
	return Object{base: &hostStorage{info: info, val: reflect.New(info.typ).Elem()}}
}

// Registry maps script type names to host types. Every Program owns one;
// the primitive types are pre-registered.
type Registry struct {
	byName map[string]*TypeInfo
	byType map[reflect.Type]*TypeInfo
}

// NewRegistry returns a registry with the built-in primitive types
// (int, the sized integer types, float, double, bool, string) already
// registered.
func NewRegistry() *Registry {
	reg := &Registry{
		byName: map[string]*TypeInfo{},
		byType: map[reflect.Type]*TypeInfo{},
	}
	for name, v := range map[string]any{
		"int":      int(0),
		"int8_t":   int8(0),
		"int16_t":  int16(0),
		"int64_t":  int64(0),
		"uint8_t":  uint8(0),
		"uint16_t": uint16(0),
		"uint32_t": uint32(0),
		"uint64_t": uint64(0),
		"float":    float32(0),
		"double":   float64(0),
		"bool":     false,
		"string":   "",
	} {
		_, err := reg.Register(name, reflect.TypeOf(v))
		check(err == nil, "primitive registration succeeds")
	}
	return reg
}

// Register binds a host type under a script-visible name. The operator
// set is derived from the Go type here, once.
func (reg *Registry) Register(name string, typ reflect.Type) (*TypeInfo, error) {
	if _, exists := reg.byName[name]; exists {
		return nil, fmt.Errorf("type %q is already registered", name)
	}
	if prev, exists := reg.byType[typ]; exists {
		return nil, fmt.Errorf("type %s is already registered as %q", typ, prev.name)
	}
	info := &TypeInfo{
		name:    name,
		typ:     typ,
		reg:     reg,
		ops:     opsForType(typ),
		fields:  map[string]fieldAccessor{},
		methods: map[string]reflect.Method{},
	}
	reg.byName[name] = info
	reg.byType[typ] = info
	return info, nil
}

// Lookup returns the info registered under a script type name.
func (reg *Registry) Lookup(name string) (*TypeInfo, bool) {
	info, ok := reg.byName[name]
	return info, ok
}

// Names returns every registered type name.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.byName))
	for name := range reg.byName {
		names = append(names, name)
	}
	return names
}

func (reg *Registry) infoOf(typ reflect.Type) (*TypeInfo, bool) {
	info, ok := reg.byType[typ]
	return info, ok
}

// Wrap converts a host Go value into an Object. A plain value is copied
// into fresh storage; a pointer to a registered type wraps the pointee as
// a reference view, so script mutations are visible to the host.
func (reg *Registry) Wrap(v any) (Object, error) {
	if v == nil {
		return Object{}, fmt.Errorf("cannot wrap nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		info, ok := reg.infoOf(rv.Type().Elem())
		if !ok {
			return Object{}, fmt.Errorf("unknown type %s", rv.Type().Elem())
		}
		if rv.IsNil() {
			return Object{}, fmt.Errorf("cannot wrap nil %s", rv.Type())
		}
		return Object{base: &hostStorage{info: info, val: rv.Elem()}}, nil
	}
	info, ok := reg.infoOf(rv.Type())
	if !ok {
		return Object{}, fmt.Errorf("unknown type %s", rv.Type())
	}
	store := reflect.New(rv.Type()).Elem()
	store.Set(rv)
	return Object{base: &hostStorage{info: info, val: store}}, nil
}

// wrapValue wraps an addressable or computed reflect value, resolving its
// TypeInfo through the registry.
func (reg *Registry) wrapValue(val reflect.Value) (Object, error) {
	info, ok := reg.infoOf(val.Type())
	if !ok {
		return Object{}, fmt.Errorf("unknown type %s", val.Type())
	}
	return Object{base: &hostStorage{info: info, val: val}}, nil
}

// Bool wraps a bool as an Object, for comparison results and conditions.
func (reg *Registry) Bool(b bool) Object {
	obj, err := reg.Wrap(b)
	check(err == nil, "bool is registered")
	return obj
}

// Float wraps a float32, the numeric literal type.
func (reg *Registry) Float(v float64) Object {
	obj, err := reg.Wrap(float32(v))
	check(err == nil, "float is registered")
	return obj
}
