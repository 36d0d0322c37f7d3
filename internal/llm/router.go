package llm

import "context"

// Router sends each request to the provider configured for its purpose
// (see WithPurpose). Unrouted purposes use the fallback.
type Router struct {
	fallback Provider
	routes   map[string]Provider
}

func NewRouter(fallback Provider, routes map[string]Provider) *Router {
	return &Router{fallback: fallback, routes: routes}
}

func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	return r.For(PurposeFrom(ctx)).Generate(ctx, req)
}

// ModelID is the fallback's model. Routed calls record their own model
// in the event log.
func (r *Router) ModelID() string { return r.fallback.ModelID() }

func (r *Router) For(purpose string) Provider {
	if p := r.routes[purpose]; p != nil {
		return p
	}
	return r.fallback
}
