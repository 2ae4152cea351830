package httpkit

import "net/http"

// MountUnder runs mount on a subrouter at prefix with mw applied first
// an empty or root prefix mounts inline as a group
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	inner := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if prefix == "" || prefix == "/" {
		r.Group(inner)
		return
	}
	r.Route(prefix, inner)
}
