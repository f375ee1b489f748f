// Package rpc groups named procedures into routers. A procedure is either a
// query (read, safe to retry) or a mutation (write).
package rpc

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/unclebandit/adsadmin-backend/internal/metrics"
	"github.com/unclebandit/adsadmin-backend/internal/validation"
)

type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

// Handler receives the raw caller input; Typed and NoInput build handlers that validate it first.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

type Procedure struct {
	Router  string
	Name    string
	Kind    Kind
	Handler Handler
}

// Path is the dotted address of the procedure, e.g. campaigns.getAll.
func (p Procedure) Path() string {
	return p.Router + "." + p.Name
}

// Router is a named group of procedures.
type Router struct {
	Name       string
	procedures map[string]Procedure
}

func NewRouter(name string) *Router {
	return &Router{Name: name, procedures: map[string]Procedure{}}
}

func (r *Router) Query(name string, h Handler) *Router {
	return r.add(name, KindQuery, h)
}

func (r *Router) Mutation(name string, h Handler) *Router {
	return r.add(name, KindMutation, h)
}

func (r *Router) add(name string, kind Kind, h Handler) *Router {
	if _, dup := r.procedures[name]; dup {
		panic("rpc: duplicate procedure " + r.Name + "." + name)
	}
	r.procedures[name] = Procedure{Router: r.Name, Name: name, Kind: kind, Handler: h}
	return r
}

func (r *Router) Lookup(name string) (Procedure, bool) {
	p, ok := r.procedures[name]
	return p, ok
}

// Procedures returns the procedures sorted by name.
func (r *Router) Procedures() []Procedure {
	out := make([]Procedure, 0, len(r.procedures))
	for _, p := range r.procedures {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Registry resolves dotted procedure paths across routers.
type Registry struct {
	routers map[string]*Router
}

func NewRegistry(routers ...*Router) *Registry {
	reg := &Registry{routers: map[string]*Router{}}
	for _, r := range routers {
		if _, dup := reg.routers[r.Name]; dup {
			panic("rpc: duplicate router " + r.Name)
		}
		reg.routers[r.Name] = r
	}
	return reg
}

// Resolve finds the procedure at a path like "clients.update".
func (reg *Registry) Resolve(path string) (Procedure, bool) {
	routerName, procName, ok := strings.Cut(path, ".")
	if !ok {
		return Procedure{}, false
	}
	r, ok := reg.routers[routerName]
	if !ok {
		return Procedure{}, false
	}
	return r.Lookup(procName)
}

// Routers returns the registered routers sorted by name.
func (reg *Registry) Routers() []*Router {
	out := make([]*Router, 0, len(reg.routers))
	for _, r := range reg.routers {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs p and records call metrics. Errors are returned unchanged.
func Invoke(ctx context.Context, p Procedure, input json.RawMessage) (any, error) {
	start := time.Now()
	out, err := p.Handler(ctx, input)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ProcedureCallsTotal.WithLabelValues(p.Router, p.Name, string(p.Kind), outcome).Inc()
	metrics.ProcedureDuration.WithLabelValues(p.Router, p.Name).Observe(time.Since(start).Seconds())
	return out, err
}

// Typed adapts fn into a Handler that validates the input shape of In before calling fn.
func Typed[In any, Out any](fn func(ctx context.Context, in In) (Out, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in In
		if err := validation.Decode(raw, &in); err != nil {
			return nil, err
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// NoInput adapts fn into a Handler that ignores caller input.
func NoInput[Out any](fn func(ctx context.Context) (Out, error)) Handler {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		out, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}
