// Package limits bounds the size of text the host surfaces back to a
// caller — the HTTP status page and the MCP tool responses — adapted
// from the teacher's limits.TruncateAtLineBoundary (limits/budget.go),
// retargeted from AI-session handoff payloads to pipeline status text.
package limits

import "strings"

const (
	// MaxStatusPageBytes bounds the rendered HTTP status page.
	MaxStatusPageBytes = 64_000
	// MaxMCPResponseBytes bounds a single MCP tool text response.
	MaxMCPResponseBytes = 16_000
	// MaxHistoryRows bounds how many build_history rows a status surface
	// will ever render in one response.
	MaxHistoryRows = 50
)

// TruncateStringSlice caps items to a running total of maxBytes,
// dropping whatever would overflow the budget. truncated reports
// whether anything was cut, so a caller can surface that fact rather
// than silently returning a partial list.
func TruncateStringSlice(items []string, maxBytes int) (out []string, truncated bool) {
	if maxBytes <= 0 {
		return nil, len(items) > 0
	}
	used := 0
	for _, it := range items {
		used += len(it) + 1
		if used > maxBytes {
			return out, true
		}
		out = append(out, it)
	}
	return out, false
}

// TruncateAtLineBoundary trims output to maxBytes, preferring a clean
// newline cut so a truncated response never ends mid-line.
func TruncateAtLineBoundary(output string, maxBytes int, truncatedMessage string) string {
	if maxBytes <= 0 || len(output) <= maxBytes {
		return output
	}

	trimmed := output[:maxBytes]
	lineCutThreshold := maxBytes - 1000
	if lineCutThreshold < 0 {
		lineCutThreshold = 0
	}
	if idx := strings.LastIndex(trimmed, "\n"); idx > lineCutThreshold {
		trimmed = trimmed[:idx]
	}

	if truncatedMessage == "" {
		truncatedMessage = "\n\n... (truncated)\n"
	}
	return trimmed + truncatedMessage
}
