// Package host exposes the coordinator to the outside world: a JSON
// message relay router (the spec's "host process" surface), an HTTP
// status page, and an MCP tool surface. The router and the MCP surface
// expose the coordinator's operations; the HTTP status page is
// read-only (GET / and /history). Routing is grounded on cmd/hooks.go's
// RunHook switch-dispatch
// style translated to JSON method routing.
package host

import (
	"encoding/json"
	"fmt"

	"pipewatch/internal/monitor"
)

// Request is one incoming JSON message: a method name plus an
// arbitrary payload.
type Request struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// Response is always either {"ok": true} or {"ok": false, "error": "…"}.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Router dispatches Requests to a Monitor by method name.
type Router struct {
	mon *monitor.Monitor
}

// NewRouter wraps mon.
func NewRouter(mon *monitor.Monitor) *Router {
	return &Router{mon: mon}
}

type pathPayload struct {
	Path string `json:"path"`
}

// Dispatch routes req to the matching operation. Unknown methods
// produce an error Response rather than a panic or process exit — the
// router is a recovery boundary like the coordinator loop itself.
func (r *Router) Dispatch(req Request) Response {
	switch req.Method {
	case "start_processing":
		return r.startProcessing()
	case "stop_processing":
		return r.stopProcessing()
	case "add_base_hub_file":
		return r.withPath(req.Payload, r.mon.AddBaseHubFile)
	case "set_reference_directory":
		return r.withPath(req.Payload, r.mon.SetReferenceDirectory)
	case "set_persistent_directory":
		return r.withPath(req.Payload, r.mon.SetPersistentDirectory)
	default:
		return Response{OK: false, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (r *Router) startProcessing() Response {
	if err := r.mon.Begin(); err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true}
}

func (r *Router) stopProcessing() Response {
	r.mon.EndAndWait()
	return Response{OK: true}
}

func (r *Router) withPath(raw json.RawMessage, fn func(string) error) Response {
	var p pathPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	if err := fn(p.Path); err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true}
}
