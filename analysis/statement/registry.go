package statement

import (
	"github.com/cs-au-dk/ctxpta/analysis/config"
	"github.com/cs-au-dk/ctxpta/analysis/program"
)

// Registry is an in-memory Registrar. Statements are kept in the order
// they were added.
type Registry struct {
	program.Resolver

	entry    *program.Method
	logger   *config.LogGroup
	all      []Statement
	byMethod map[*program.Method][]Statement
}

// NewRegistry creates a registry for a program starting at entry. A nil
// resolver resolves calls with program.ClassTable.
func NewRegistry(entry *program.Method, resolver program.Resolver, logger *config.LogGroup) *Registry {
	if resolver == nil {
		resolver = program.ClassTable{}
	}
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	return &Registry{
		Resolver: resolver,
		entry:    entry,
		logger:   logger,
		byMethod: make(map[*program.Method][]Statement),
	}
}

// Add registers statements with the methods they belong to.
func (r *Registry) Add(stmts ...Statement) *Registry {
	for _, s := range stmts {
		r.all = append(r.all, s)
		r.byMethod[s.Method()] = append(r.byMethod[s.Method()], s)
	}
	return r
}

func (r *Registry) AllStatements() []Statement {
	return r.all
}

func (r *Registry) StatementsFor(m *program.Method) []Statement {
	return r.byMethod[m]
}

func (r *Registry) Entry() *program.Method {
	return r.entry
}

func (r *Registry) Logger() *config.LogGroup {
	return r.logger
}
