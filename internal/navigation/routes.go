// Package navigation holds the site's route table and the link interceptor
// that plays the cover animation before leaving a page.
package navigation

import "strings"

const HomePath = "/"

// Route is one client-facing page.
type Route struct {
	Path     string
	Title    string
	Template string
	// Category selects the projects shown on a service page.
	Category string
	// AliasOf is set on legacy paths that redirect to a canonical route.
	AliasOf string
}

var routes = []Route{
	{Path: HomePath, Title: "Home", Template: "index.html"},
	{Path: "/fullstack-development", Title: "Fullstack Development", Template: "service.html", Category: "fullstack"},
	{Path: "/graphic-design", Title: "Graphic Design", Template: "service.html", Category: "graphic"},
	{Path: "/mobile-development", Title: "Mobile Development", Template: "service.html", Category: "mobile"},
	{Path: "/virtual-assistant", Title: "Virtual Assistant", Template: "service.html", Category: "virtual-assistant"},
	{Path: "/virtual-analyst", AliasOf: "/virtual-assistant"},
}

// All returns the canonical routes in menu order.
func All() []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if r.AliasOf == "" {
			out = append(out, r)
		}
	}
	return out
}

// Services returns every canonical route except home.
func Services() []Route {
	var out []Route
	for _, r := range All() {
		if r.Path != HomePath {
			out = append(out, r)
		}
	}
	return out
}

// Aliases returns the legacy routes.
func Aliases() []Route {
	var out []Route
	for _, r := range routes {
		if r.AliasOf != "" {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a route, aliases included. Trailing slashes are ignored.
func Lookup(path string) (Route, bool) {
	path = clean(path)
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Canonical resolves aliases; unknown paths are returned cleaned.
func Canonical(path string) string {
	r, ok := Lookup(path)
	if !ok {
		return clean(path)
	}
	if r.AliasOf != "" {
		return r.AliasOf
	}
	return r.Path
}

// IsHome reports whether path is the home route.
func IsHome(path string) bool {
	return clean(path) == HomePath
}

func clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return HomePath
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return HomePath
		}
	}
	return path
}
