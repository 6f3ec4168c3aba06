package server

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by mirroring messages to a writer and a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	out         io.Writer
}

// NewWebLogger creates a new web logger for a specific render that mirrors to stdout
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{renderID: renderID, consoleChan: consoleChan, out: os.Stdout}
}

// Printf implements core.Logger. It never blocks on the console channel.
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.out != nil {
		fmt.Fprintf(wl.out, "[%s] %s", wl.renderID, message)
	}

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
		// Channel full, skip
	}
}

// messageLevel classifies a message by its leading word
func messageLevel(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.HasPrefix(lower, "error"):
		return "error"
	case strings.HasPrefix(lower, "warning"), strings.Contains(lower, "cancelled"):
		return "warning"
	}
	return "info"
}
