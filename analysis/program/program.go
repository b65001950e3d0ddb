// Package program holds the program entities the points-to engine reasons
// about: types, methods, fields, local variables and the allocation and
// call sites that appear in method bodies.
//
// Extracting these entities from a real program representation is the job of
// a front end. The engine only relies on their identity (pointer equality)
// and on the stable names used for hashing and printing.
package program

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/fatih/color"
)

var colorize = struct {
	Type   func(...interface{}) string
	Method func(...interface{}) string
	Local  func(...interface{}) string
	Site   func(...interface{}) string
}{
	Type:   utils.Painter(color.FgYellow),
	Method: utils.Painter(color.FgHiYellow),
	Local:  utils.Painter(color.FgHiGreen),
	Site:   utils.Painter(color.FgHiCyan),
}

// Type is a class, interface or array type.
type Type struct {
	Name       string
	Super      *Type
	Interfaces []*Type
	Interface  bool
	Array      bool
	// Elem is the element type of array types.
	Elem *Type

	methods map[string]*Method
}

// NewClass creates a class type extending super (which may be nil).
func NewClass(name string, super *Type, ifaces ...*Type) *Type {
	return &Type{Name: name, Super: super, Interfaces: ifaces}
}

// NewInterface creates an interface type extending the given interfaces.
func NewInterface(name string, supers ...*Type) *Type {
	return &Type{Name: name, Interfaces: supers, Interface: true}
}

// NewArray creates an array type with the given element type.
func NewArray(elem *Type) *Type {
	return &Type{Name: elem.Name + "[]", Array: true, Elem: elem}
}

// Declared returns the method declared directly on t with the given
// signature, if any.
func (t *Type) Declared(signature string) (*Method, bool) {
	m, ok := t.methods[signature]
	return m, ok
}

// SubtypeOf checks whether values of type t may be stored in a variable of
// declared type u.
func (t *Type) SubtypeOf(u *Type) bool {
	if t == nil || u == nil {
		return false
	}
	if t == u {
		return true
	}
	if t.Array {
		return u.Array && t.Elem.SubtypeOf(u.Elem)
	}
	if t.Super != nil && t.Super.SubtypeOf(u) {
		return true
	}
	for _, i := range t.Interfaces {
		if i.SubtypeOf(u) {
			return true
		}
	}
	return false
}

func (t *Type) Hash() uint32 {
	if t == nil {
		return 0
	}
	return utils.HashString(t.Name)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	return colorize.Type(t.Name)
}

// Method is a method or static function. Instance methods have a receiver
// variable (This); every method has one local per formal parameter.
type Method struct {
	Name      string
	Signature string
	Class     *Type
	Static    bool
	// Abstract methods have no body and are never dispatch targets.
	Abstract bool
	// Initializer marks static class initializers.
	Initializer bool

	This   *Local
	Params []*Local

	locals map[string]*Local
}

// NewMethod declares a method on class. The method's name doubles as its
// dispatch signature. Formal parameter locals are created for every name in
// params.
func NewMethod(class *Type, name string, static bool, params ...string) *Method {
	m := &Method{
		Name:      name,
		Signature: name,
		Class:     class,
		Static:    static,
		locals:    make(map[string]*Local),
	}
	if !static {
		m.This = m.Local("this", class)
	}
	for _, p := range params {
		m.Params = append(m.Params, m.Local(p, nil))
	}
	if class != nil {
		if class.methods == nil {
			class.methods = make(map[string]*Method)
		}
		class.methods[m.Signature] = m
	}
	return m
}

// Local returns the local variable with the given name, creating it on
// first use.
func (m *Method) Local(name string, typ *Type) *Local {
	if l, ok := m.locals[name]; ok {
		return l
	}
	l := &Local{Method: m, Name: name, Type: typ}
	m.locals[name] = l
	return l
}

// QualifiedName is the class qualified name of the method.
func (m *Method) QualifiedName() string {
	if m.Class == nil {
		return m.Name
	}
	return m.Class.Name + "." + m.Name
}

func (m *Method) Hash() uint32 {
	return utils.HashString(m.QualifiedName())
}

func (m *Method) String() string {
	return colorize.Method(m.QualifiedName())
}

// Field is an instance or static field.
type Field struct {
	Class  *Type
	Name   string
	Static bool
}

// NewField declares a field on class.
func NewField(class *Type, name string, static bool) *Field {
	return &Field{Class: class, Name: name, Static: static}
}

func (f *Field) Hash() uint32 {
	return utils.HashCombine(f.Class.Hash(), utils.HashString(f.Name))
}

func (f *Field) String() string {
	return fmt.Sprintf("%s.%s", f.Class.Name, f.Name)
}

// Local is a local variable (or formal parameter) of a method.
type Local struct {
	Method *Method
	Name   string
	Type   *Type
}

func (l *Local) Hash() uint32 {
	return utils.HashCombine(l.Method.Hash(), utils.HashString(l.Name))
}

func (l *Local) String() string {
	return l.Method.QualifiedName() + ":" + colorize.Local(l.Name)
}

// AllocSite is a program point that allocates a new object of Type.
type AllocSite struct {
	Method *Method
	Label  string
	Type   *Type
}

// NewAllocSite creates an allocation site of typ inside m.
func NewAllocSite(m *Method, label string, typ *Type) *AllocSite {
	return &AllocSite{Method: m, Label: label, Type: typ}
}

// IsArray reports whether the site allocates an array.
func (s *AllocSite) IsArray() bool {
	return s.Type != nil && s.Type.Array
}

func (s *AllocSite) Hash() uint32 {
	return utils.HashCombine(s.Method.Hash(), utils.HashString(s.Label))
}

func (s *AllocSite) String() string {
	return colorize.Site(fmt.Sprintf("new %s@%s:%s", s.Type.Name, s.Method.QualifiedName(), s.Label))
}

// CallKind classifies the dispatch of a call site.
type CallKind int

const (
	Static CallKind = iota
	Special
	Virtual
)

func (k CallKind) String() string {
	switch k {
	case Static:
		return "static"
	case Special:
		return "special"
	case Virtual:
		return "virtual"
	}
	return fmt.Sprintf("CallKind(%d)", int(k))
}

// CallSite is a program point invoking Target. For virtual calls Target is
// the statically declared method, for static and special calls it is the
// exact callee.
type CallSite struct {
	Method *Method
	Label  string
	Kind   CallKind
	Target *Method
}

// NewCallSite creates a call site inside m.
func NewCallSite(m *Method, label string, kind CallKind, target *Method) *CallSite {
	return &CallSite{Method: m, Label: label, Kind: kind, Target: target}
}

// IsStatic reports whether the call is statically dispatched.
func (s *CallSite) IsStatic() bool {
	return s.Kind == Static
}

func (s *CallSite) Hash() uint32 {
	return utils.HashCombine(s.Method.Hash(), utils.HashString(s.Label))
}

func (s *CallSite) String() string {
	return colorize.Site(s.Method.QualifiedName() + "@" + s.Label)
}
