// Package taskboardv1connect binds the taskboard.v1 services to connect
// handlers and clients.
package taskboardv1connect

import "net/http"

// routes dispatches one service's procedures by exact path.
type routes map[string]http.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, ok := r[req.URL.Path]
	if !ok {
		http.NotFound(w, req)
		return
	}
	h.ServeHTTP(w, req)
}
