package port

// Fields carries structured data into a log entry.
type Fields map[string]interface{}

// LoggerPort defines the contract for the logging system.
type LoggerPort interface {
	Info(msg string, fields Fields)

	Warn(msg string, fields Fields)

	Error(msg string, err error, fields Fields)

	Debug(msg string, fields Fields)

	// WithFields creates a new logger instance with the fields already attached.
	WithFields(fields Fields) LoggerPort
}
