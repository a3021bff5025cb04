package logger

import (
	"log"
	"strings"
)

// logWriter implements io.Writer to redirect standard library log output to our logger
type logWriter struct{}

func (lw *logWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message == "" {
		return len(p), nil
	}

	if strings.Contains(message, "TLS") || strings.Contains(message, "tls") {
		Warn("diagnostics server: %s", message)
	} else if strings.Contains(message, "error") || strings.Contains(message, "Error") {
		Error("diagnostics server: %s", message)
	} else {
		Info("diagnostics server: %s", message)
	}

	return len(p), nil
}

// InitLogBridge redirects standard library log output to our logger.
func InitLogBridge() {
	writer := &logWriter{}
	log.SetOutput(writer)
	log.SetFlags(0)
	Debug("standard library log output redirected to columnstore logger")
}

// SetHTTPServerErrorLog returns a logger for diagnostics.Server's http.Server.ErrorLog field.
func SetHTTPServerErrorLog() *log.Logger {
	writer := &logWriter{}
	return log.New(writer, "", 0)
}