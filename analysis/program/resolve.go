package program

// Resolver resolves the methods a call site may dispatch to. For virtual
// calls recv is the dynamic type of one receiver object; it is nil for
// statically dispatched calls. An empty result means the target is unknown.
type Resolver interface {
	Resolve(site *CallSite, recv *Type) []*Method
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(site *CallSite, recv *Type) []*Method

func (f ResolverFunc) Resolve(site *CallSite, recv *Type) []*Method {
	return f(site, recv)
}

// ClassTable resolves calls with single inheritance virtual dispatch over
// the Super chain of the receiver type.
type ClassTable struct{}

func (ClassTable) Resolve(site *CallSite, recv *Type) []*Method {
	switch site.Kind {
	case Static, Special:
		if site.Target == nil || site.Target.Abstract {
			return nil
		}
		return []*Method{site.Target}
	}

	if recv == nil || site.Target == nil {
		return nil
	}
	sig := site.Target.Signature
	for t := recv; t != nil; t = t.Super {
		if m, ok := t.Declared(sig); ok {
			if m.Abstract {
				return nil
			}
			return []*Method{m}
		}
	}
	return nil
}
