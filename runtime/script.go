package runtime

import (
	"fmt"

	"github.com/wicstas/llc/token"
)

// scriptStorage backs objects of struct types declared in source. The
// member map is the authoritative state; operators apply member-wise.
type scriptStorage struct {
	reg     *Registry
	name    string
	order   []string
	members map[string]Object
	methods map[string]*ScriptFunction
}

func newScriptStorage(reg *Registry, name string) *scriptStorage {
	return &scriptStorage{
		reg:     reg,
		name:    name,
		members: map[string]Object{},
		methods: map[string]*ScriptFunction{},
	}
}

func (s *scriptStorage) addMember(name string, v Object) {
	if _, exists := s.members[name]; !exists {
		s.order = append(s.order, name)
	}
	s.members[name] = v
}

func (s *scriptStorage) typeName() string { return s.name }

func (s *scriptStorage) clone() storage {
	fresh := newScriptStorage(s.reg, s.name)
	fresh.order = append([]string(nil), s.order...)
	for name, member := range s.members {
		fresh.members[name] = member.Clone()
	}
	// method definitions are immutable; binding happens at lookup so a
	// clone's methods observe the clone's members
	fresh.methods = s.methods
	return fresh
}

func (s *scriptStorage) assign(src storage) error {
	r, ok := src.(*scriptStorage)
	if !ok {
		return fmt.Errorf("cannot assign host type %q to script type %q", src.typeName(), s.name)
	}
	for _, name := range r.order {
		if member, exists := s.members[name]; exists {
			if err := member.Assign(r.members[name]); err != nil {
				return fmt.Errorf("member %q: %w", name, err)
			}
		} else {
			s.addMember(name, r.members[name].Clone())
		}
	}
	return nil
}

func (s *scriptStorage) pair(op string, rhs storage) (*scriptStorage, error) {
	r, ok := rhs.(*scriptStorage)
	if !ok {
		return nil, fmt.Errorf("cannot apply operator %q between %q and %q", op, s.name, rhs.typeName())
	}
	return r, nil
}

func (s *scriptStorage) arith(op byte, rhs storage) error {
	r, err := s.pair(string(op), rhs)
	if err != nil {
		return err
	}
	for _, name := range r.order {
		member, exists := s.members[name]
		if !exists {
			return fmt.Errorf("type %q has no member %q", s.name, name)
		}
		if err := member.ArithAssign(op, r.members[name]); err != nil {
			return fmt.Errorf("member %q: %w", name, err)
		}
	}
	return nil
}

// compare is member-wise: equality holds when every member is equal,
// inequality when any member differs, and an ordering holds when every
// member satisfies it.
func (s *scriptStorage) compare(op token.Kind, rhs storage) (bool, error) {
	r, err := s.pair(op.String(), rhs)
	if err != nil {
		return false, err
	}
	for _, name := range r.order {
		member, exists := s.members[name]
		if !exists {
			return false, fmt.Errorf("type %q has no member %q", s.name, name)
		}
		holds, err := member.base.compare(op, r.members[name].base)
		if err != nil {
			return false, fmt.Errorf("member %q: %w", name, err)
		}
		if op == token.NotEqual {
			if holds {
				return true, nil
			}
		} else if !holds {
			return false, nil
		}
	}
	return op != token.NotEqual, nil
}

func (s *scriptStorage) opError(op string) error {
	return fmt.Errorf("type %q does not have operator %q", s.name, op)
}

func (s *scriptStorage) negate() (storage, error) {
	return nil, s.opError("-")
}

func (s *scriptStorage) incDec(delta int, post bool) (storage, error) {
	if delta < 0 {
		return nil, s.opError("--")
	}
	return nil, s.opError("++")
}

func (s *scriptStorage) element(index int) (Object, error) {
	return Object{}, s.opError("[]")
}

func (s *scriptStorage) setElement(index int, v Object) error {
	return s.opError("[]")
}

func (s *scriptStorage) member(name string) (Object, error) {
	member, ok := s.members[name]
	if !ok {
		return Object{}, fmt.Errorf("type %q has no member %q", s.name, name)
	}
	return member, nil
}

func (s *scriptStorage) method(name string) (Function, bool) {
	fn, ok := s.methods[name]
	if !ok {
		return Function{}, false
	}
	return Function{base: &boundScriptMethod{fn: fn, recv: s}}, true
}

func (s *scriptStorage) alloc() (storage, error) {
	return nil, fmt.Errorf("script type %q cannot be allocated with \"new\"", s.name)
}

func (s *scriptStorage) construct(args []Object) (Object, error) {
	return Object{}, fmt.Errorf("script type %q has no constructors", s.name)
}

// ScriptType assembles the exemplar of a struct declared in source: its
// member exemplars in declaration order, plus its methods.
type ScriptType struct {
	storage *scriptStorage
}

// NewScriptType starts a script struct type named name.
func NewScriptType(reg *Registry, name string) *ScriptType {
	return &ScriptType{storage: newScriptStorage(reg, name)}
}

// AddMember declares a member from a type exemplar.
func (t *ScriptType) AddMember(name string, exemplar Object) error {
	if _, exists := t.storage.members[name]; exists {
		return fmt.Errorf("member %q is already declared in struct %q", name, t.storage.name)
	}
	t.storage.addMember(name, exemplar.Clone())
	return nil
}

// AddMethod declares a method.
func (t *ScriptType) AddMethod(name string, fn *ScriptFunction) error {
	if _, exists := t.storage.methods[name]; exists {
		return fmt.Errorf("method %q is already declared in struct %q", name, t.storage.name)
	}
	t.storage.methods[name] = fn
	return nil
}

// Exemplar returns the finished type exemplar.
func (t *ScriptType) Exemplar() Object {
	return Object{base: t.storage}
}
