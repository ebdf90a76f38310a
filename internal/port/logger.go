package port

// Logger receives leveled diagnostics. fields may be nil. Implementations must
// be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Verbose(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Renderer turns free text into rendered text (markdown to HTML, for
// example). It must be a pure function of its input.
type Renderer interface {
	Render(text string) (string, error)
}
