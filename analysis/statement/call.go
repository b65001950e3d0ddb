package statement

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/ctxpta/analysis/heap"
	"github.com/cs-au-dk/ctxpta/analysis/program"
	"github.com/cs-au-dk/ctxpta/analysis/ptgraph"
	"github.com/pkg/errors"
)

// Call is the invocation Result = Receiver.Site(Args...). Receiver is nil
// for static calls and Result is nil when the value is discarded.
//
// Every resolved callee is analysed in the context the policy merges for
// the call edge. The receiver object flows into the callee's this, the
// arguments into its formals, its return value into Result and its
// exceptions into the exceptions of the calling method.
type Call struct {
	Site     *program.CallSite
	Receiver *program.Local
	Args     []*program.Local
	Result   *program.Local
}

func (s *Call) Method() *program.Method { return s.Site.Method }

func (s *Call) Process(ctx heap.Context, policy heap.Policy, g Graph, reg Registrar) (bool, error) {
	m := s.Method()
	if err := owned(s, m, s.Args...); err != nil {
		return false, err
	}
	if s.Result != nil {
		if err := owned(s, m, s.Result); err != nil {
			return false, err
		}
	}

	if s.Site.IsStatic() {
		callees := reg.Resolve(s.Site, nil)
		if len(callees) == 0 {
			s.warnUnresolved(reg, nil)
			return false, nil
		}
		return s.bindAll(ctx, callees, policy.Merge(s.Site, nil, ctx), nil, g)
	}

	if s.Receiver == nil {
		return false, errors.Errorf("%s: %s call without receiver", s, s.Site.Kind)
	}
	if err := owned(s, m, s.Receiver); err != nil {
		return false, err
	}

	changed := false
	for _, recv := range pts(g, s.Receiver, ctx).Entries() {
		callees := reg.Resolve(s.Site, recv.Type())
		if len(callees) == 0 {
			s.warnUnresolved(reg, recv.Type())
			continue
		}

		c, err := s.bindAll(ctx, callees, policy.Merge(s.Site, recv, ctx), recv, g)
		if err != nil {
			return false, err
		}
		changed = c || changed
	}
	return changed, nil
}

// unresolvedKey identifies a failed resolution, so that it is reported
// once per run however often the call is processed.
type unresolvedKey struct {
	site *program.CallSite
	recv *program.Type
}

func (s *Call) warnUnresolved(reg Registrar, recv *program.Type) {
	key := unresolvedKey{s.Site, recv}
	if recv == nil {
		reg.Logger().WarnOnce(key, "No target for %s at %v, skipping call", s.Site.Target, s.Site)
	} else {
		reg.Logger().WarnOnce(key, "No target for %s on receiver type %s at %v, skipping call", s.Site.Target, recv, s.Site)
	}
}

func (s *Call) bindAll(
	ctx heap.Context,
	callees []*program.Method,
	calleeCtx heap.Context,
	recv *heap.InstanceKey,
	g Graph,
) (bool, error) {
	changed := false
	for _, callee := range callees {
		c, err := s.bind(ctx, callee, calleeCtx, recv, g)
		if err != nil {
			return false, err
		}
		changed = c || changed
	}
	return changed, nil
}

func (s *Call) bind(
	ctx heap.Context,
	callee *program.Method,
	calleeCtx heap.Context,
	recv *heap.InstanceKey,
	g Graph,
) (bool, error) {
	if len(s.Args) != len(callee.Params) {
		return false, errors.Errorf("%s: %s expects %d arguments, got %d",
			s, callee, len(callee.Params), len(s.Args))
	}
	if recv != nil && !callee.Static && callee.This == nil {
		return false, errors.Errorf("%s: %s has no receiver formal", s, callee)
	}

	caller := s.Method()
	changed := g.AddCall(caller, ctx, s.Site, callee, calleeCtx)

	if recv != nil && !callee.Static {
		changed = g.AddEdge(local(g, callee.This, calleeCtx), recv) || changed
	}
	for i, arg := range s.Args {
		changed = g.AddEdges(local(g, callee.Params[i], calleeCtx), pts(g, arg, ctx)) || changed
	}
	if s.Result != nil {
		ret := g.PointsToSet(g.Node(ptgraph.Return(callee, calleeCtx)))
		changed = g.AddEdges(local(g, s.Result, ctx), ret) || changed
	}

	thrown := g.PointsToSet(g.Node(ptgraph.Exception(callee, calleeCtx)))
	changed = g.AddEdges(g.Node(ptgraph.Exception(caller, ctx)), thrown) || changed
	return changed, nil
}

func (s *Call) String() string {
	var sb strings.Builder
	if s.Result != nil {
		sb.WriteString(s.Result.Name + " = ")
	}
	if s.Receiver != nil {
		sb.WriteString(s.Receiver.Name + ".")
	}

	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		args = append(args, name(a))
	}
	target := s.Site.Label
	if s.Site.Target != nil {
		target = s.Site.Target.Name
	}
	fmt.Fprintf(&sb, "%s(%s) %s", target, strings.Join(args, ", "), colorize.Op(s.Site.Kind))
	return sb.String()
}

// ClassInit triggers the static initializer Init from In. Initializers run
// in the initial context regardless of the triggering context.
type ClassInit struct {
	In   *program.Method
	Init *program.Method
}

func (s *ClassInit) Method() *program.Method { return s.In }

func (s *ClassInit) Process(ctx heap.Context, policy heap.Policy, g Graph, _ Registrar) (bool, error) {
	if s.Init == nil || !s.Init.Static {
		return false, errors.Errorf("%s: initializer must be a static method", s)
	}
	return g.AddCall(s.In, ctx, nil, s.Init, policy.InitialContext()), nil
}

func (s *ClassInit) String() string {
	target := "<nil>"
	if s.Init != nil {
		target = s.Init.QualifiedName()
	}
	return fmt.Sprintf("%s %s", colorize.Op("clinit"), target)
}
