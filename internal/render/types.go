package render

const (
	// Span status codes
	StatusOK    = "OK"
	StatusError = "ERROR"
	StatusUnset = "UNSET"

	// TimeFormat is the display layout of timestamps, always UTC.
	TimeFormat = "2006-01-02 15:04:05"

	// MaxCellWidth caps free-text cells such as span input and output.
	MaxCellWidth = 40
)
