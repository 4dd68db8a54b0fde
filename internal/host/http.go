package host

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"pipewatch/internal/limits"
	"pipewatch/internal/monitor"
)

// StatusHandler serves GET / with an HTML snapshot of tracked
// information, taken under the coordinator's lock via Monitor.Snapshot.
type StatusHandler struct {
	mon *monitor.Monitor
}

// NewStatusHandler wraps mon.
func NewStatusHandler(mon *monitor.Monitor) *StatusHandler {
	return &StatusHandler{mon: mon}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.NotFound(w, req)
		return
	}

	switch req.URL.Path {
	case "/":
		h.serveStatus(w)
	case "/history":
		h.serveHistory(w)
	default:
		http.NotFound(w, req)
	}
}

func (h *StatusHandler) serveStatus(w http.ResponseWriter) {
	info := h.mon.Snapshot()

	var b strings.Builder
	b.WriteString("<!doctype html><html><head><title>pipewatch</title></head><body>")
	fmt.Fprintf(&b, "<h1>pipewatch</h1>")
	fmt.Fprintf(&b, "<p>stopped: %v &middot; dirty: %d &middot; outbox: %d &middot; pending: %d</p>",
		h.mon.IsStopped(), info.Dirty, info.Outbox, info.Pending)

	writeSection(&b, "Tools", info.Tools)
	writeSection(&b, "Hubs", info.Hubs)
	writeSection(&b, "Paths", info.Paths)
	writeSection(&b, "Wildcards", info.Wildcards)

	b.WriteString("</body></html>")

	page := limits.TruncateAtLineBoundary(b.String(), limits.MaxStatusPageBytes, "\n<!-- truncated -->\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// serveHistory serves GET /history: the most recent build_history rows
// for backends that keep one (currently only sqlitestore). Backends
// without a history table (the default JSON backend, or no persistence
// at all) report this plainly rather than a 404 — /history is always a
// valid route, it may just be empty.
func (h *StatusHandler) serveHistory(w http.ResponseWriter) {
	entries, supported, err := h.mon.RecentHistory(limits.MaxHistoryRows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("<!doctype html><html><head><title>pipewatch build history</title></head><body>")
	b.WriteString("<h1>build history</h1>")

	if !supported {
		b.WriteString("<p>the configured persistence backend does not keep a build history.</p>")
	} else {
		fmt.Fprintf(&b, "<p>most recent %d executions</p><table border=\"1\"><tr><th>tool</th><th>in</th><th>out</th><th>duration</th><th>success</th><th>finished</th><th>error</th></tr>", len(entries))
		for _, e := range entries {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%v</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(e.Tool), html.EscapeString(e.PathIn), html.EscapeString(e.PathOut),
				e.Duration, e.Success, e.FinishedAt.Format("2006-01-02T15:04:05Z07:00"), html.EscapeString(e.Error))
		}
		b.WriteString("</table>")
	}
	b.WriteString("</body></html>")

	page := limits.TruncateAtLineBoundary(b.String(), limits.MaxStatusPageBytes, "\n<!-- truncated -->\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func writeSection(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "<h2>%s (%d)</h2><ul>", html.EscapeString(title), len(items))
	for _, it := range items {
		fmt.Fprintf(b, "<li>%s</li>", html.EscapeString(it))
	}
	b.WriteString("</ul>")
}
