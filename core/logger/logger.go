package logger

// Logger is the logging surface used across the dashboard packages.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// FieldLogger attaches structured fields to informational messages. The
// zerolog adapter implements it; callers type-assert before use.
type FieldLogger interface {
	Infow(msg string, fields map[string]any)
}
