package report

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	termRendererMu sync.Mutex
	termRenderers  = map[int]*glamour.TermRenderer{}
)

// getTermRenderer returns a markdown renderer for the given wrap width,
// building one per width on first use.
func getTermRenderer(width int) *glamour.TermRenderer {
	termRendererMu.Lock()
	defer termRendererMu.Unlock()

	if r, ok := termRenderers[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	termRenderers[width] = r
	return r
}

// RenderTerminal renders report markdown to styled terminal output.
// If rendering fails, returns the original content.
func RenderTerminal(content string, width int) string {
	if content == "" {
		return ""
	}

	renderer := getTermRenderer(width)
	if renderer == nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	// Trim trailing newlines that glamour adds
	return strings.TrimRight(rendered, "\n")
}
