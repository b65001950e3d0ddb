package ptgraph

import (
	"fmt"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/utils"
	"github.com/fatih/color"
)

var colorize = struct {
	Kind func(...interface{}) string
	ID   func(...interface{}) string
}{
	Kind: utils.Painter(color.FgHiWhite, color.Faint),
	ID:   utils.Painter(color.FgHiCyan),
}

// Kind is the kind of pointer entity a node stands for.
type Kind uint8

const (
	// LocalNode is a local variable specialized to a context.
	LocalNode Kind = iota
	// StaticFieldNode is a static field. Static fields are not specialized.
	StaticFieldNode
	// FieldNode is an instance field of an abstract object.
	FieldNode
	// ArrayNode stands for the contents of an abstract array.
	ArrayNode
	// ReturnNode is the return value of a method in a context.
	ReturnNode
	// ExceptionNode collects the exceptions a method may throw in a context.
	ExceptionNode
)

func (k Kind) String() string {
	switch k {
	case LocalNode:
		return "local"
	case StaticFieldNode:
		return "static"
	case FieldNode:
		return "field"
	case ArrayNode:
		return "array"
	case ReturnNode:
		return "return"
	case ExceptionNode:
		return "exception"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// NodeKey names a pointer entity. Keys are comparable: contexts and
// instance keys are interned.
type NodeKey struct {
	Kind    Kind
	Local   *program.Local
	Field   *program.Field
	Object  *heap.InstanceKey
	Method  *program.Method
	Context heap.Context
}

// Local is the node of local variable l in ctx.
func Local(l *program.Local, ctx heap.Context) NodeKey {
	return NodeKey{Kind: LocalNode, Local: l, Method: l.Method, Context: ctx}
}

// StaticField is the node of static field f.
func StaticField(f *program.Field) NodeKey {
	return NodeKey{Kind: StaticFieldNode, Field: f}
}

// Field is the node of field f of object o.
func Field(o *heap.InstanceKey, f *program.Field) NodeKey {
	return NodeKey{Kind: FieldNode, Object: o, Field: f}
}

// ArrayContents is the node of the contents of array o.
func ArrayContents(o *heap.InstanceKey) NodeKey {
	return NodeKey{Kind: ArrayNode, Object: o}
}

// Return is the node of the return value of m in ctx.
func Return(m *program.Method, ctx heap.Context) NodeKey {
	return NodeKey{Kind: ReturnNode, Method: m, Context: ctx}
}

// Exception is the node of the exceptions thrown by m in ctx.
func Exception(m *program.Method, ctx heap.Context) NodeKey {
	return NodeKey{Kind: ExceptionNode, Method: m, Context: ctx}
}

// Owner is the (method, context) the node was created in. Field, array and
// static field nodes have no owner.
func (k NodeKey) Owner() (*program.Method, heap.Context, bool) {
	switch k.Kind {
	case LocalNode, ReturnNode, ExceptionNode:
		return k.Method, k.Context, true
	}
	return nil, nil, false
}

func (k NodeKey) String() string {
	kind := colorize.Kind(k.Kind.String())
	switch k.Kind {
	case LocalNode:
		return fmt.Sprintf("%s %s %s", kind, k.Local, k.Context)
	case StaticFieldNode:
		return fmt.Sprintf("%s %s", kind, k.Field)
	case FieldNode:
		return fmt.Sprintf("%s %s.%s", kind, k.Object, k.Field.Name)
	case ArrayNode:
		return fmt.Sprintf("%s %s[*]", kind, k.Object)
	case ReturnNode, ExceptionNode:
		return fmt.Sprintf("%s %s %s", kind, k.Method, k.Context)
	}
	return kind
}
