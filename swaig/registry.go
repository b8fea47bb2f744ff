package swaig

import (
	"fmt"
	"sync"

	"github.com/hupe1980/callmesh/swml"
)

// Registry holds the callable function surface of an agent. Registration
// order is preserved so declarations render deterministically. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	functions map[string]Function
}

// NewRegistry constructs an empty function registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]Function)}
}

// Register adds a function, rejecting empty and duplicate names.
func (r *Registry) Register(fn Function) error {
	name := fn.Name()
	if name == "" {
		return fmt.Errorf("function name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("function %q is already registered", name)
	}
	r.functions[name] = fn
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Names returns function names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Declarations renders the wire-form declarations for the SWML AI verb in
// registration order.
func (r *Registry) Declarations() []swml.FunctionDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]swml.FunctionDecl, 0, len(r.order))
	for _, name := range r.order {
		fn := r.functions[name]
		decls = append(decls, swml.FunctionDecl{
			Function:    fn.Name(),
			Description: fn.Description(),
			Parameters:  fn.Parameters(),
		})
	}
	return decls
}

// Dispatch resolves and executes the function named in the request, feeding it
// the merged arguments. Unknown functions yield a *FunctionError with code
// FUNCTION_NOT_FOUND.
func (r *Registry) Dispatch(callCtx *CallContext, req *FunctionRequest) (*Result, error) {
	fn, ok := r.Lookup(req.Function)
	if !ok {
		return nil, &FunctionError{
			Function: req.Function,
			Message:  fmt.Sprintf("function %q is not registered", req.Function),
			Code:     CodeFunctionNotFound,
		}
	}
	return fn.Call(callCtx, req.Argument.Args())
}
