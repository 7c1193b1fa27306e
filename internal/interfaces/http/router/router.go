package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Route is one mounted endpoint
type Route struct {
	Group  string
	Method string
	Path   string
}

// Router mounts domain groups under a versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	groups     []*DomainGroup
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a group for Setup
func (r *Router) Register(group *DomainGroup) *Router {
	r.groups = append(r.groups, group)
	return r
}

// Prefix is the path every registered group is mounted under
func (r *Router) Prefix() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every registered group and returns the resulting route table
func (r *Router) Setup() []Route {
	api := r.engine.Group(r.Prefix())
	var mounted []Route
	for _, g := range r.groups {
		mounted = append(mounted, g.mount(api, g.name)...)
	}
	return mounted
}

// DomainGroup is a prefix with its own middleware, routes and nested groups
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []routeDefinition
	subgroups  []*DomainGroup
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group and every nested group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relativePath, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relativePath, handlers)
}

func (dg *DomainGroup) handle(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relativePath, handlers: handlers})
	return dg
}

// Group creates a nested group. The returned group inherits this group's middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Routes lists the group's routes relative to its parent, nested groups included
func (dg *DomainGroup) Routes() []Route {
	var out []Route
	dg.walk(dg.prefix, dg.name, func(rt Route, _ []gin.HandlerFunc) {
		out = append(out, rt)
	})
	return out
}

func (dg *DomainGroup) walk(base, name string, visit func(Route, []gin.HandlerFunc)) {
	for _, rd := range dg.routes {
		visit(Route{Group: name, Method: rd.method, Path: joinPath(base, rd.path)}, rd.handlers)
	}
	for _, sub := range dg.subgroups {
		sub.walk(joinPath(base, sub.prefix), name+"."+sub.name, visit)
	}
}

func (dg *DomainGroup) mount(rg *gin.RouterGroup, name string) []Route {
	group := rg.Group(dg.prefix, dg.middleware...)

	var mounted []Route
	for _, rd := range dg.routes {
		group.Handle(rd.method, rd.path, rd.handlers...)
		mounted = append(mounted, Route{Group: name, Method: rd.method, Path: joinPath(group.BasePath(), rd.path)})
	}
	for _, sub := range dg.subgroups {
		mounted = append(mounted, sub.mount(group, name+"."+sub.name)...)
	}
	return mounted
}

// joinPath joins like gin does: a trailing slash on rel survives
func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	joined := path.Join(base, rel)
	if rel[len(rel)-1] == '/' && joined[len(joined)-1] != '/' {
		joined += "/"
	}
	return joined
}
