package logger

import "os"

// SetupLogger replaces the default logger with one writing to stderr at
// logLevel. An unknown level is rejected and leaves the default in place.
func SetupLogger(logLevel string, logJSON, logSource bool) error {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	Init(&Config{
		Level:      level,
		Output:     os.Stderr,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
	return nil
}
