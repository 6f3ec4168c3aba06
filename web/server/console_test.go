package server

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func newTestLogger(renderID string, messageChan chan ConsoleMessage) (*WebLogger, *bytes.Buffer) {
	var out bytes.Buffer
	return &WebLogger{renderID: renderID, consoleChan: messageChan, out: &out}, &out
}

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger, out := newTestLogger("test-render-123", messageChan)

	logger.Printf("%s\n", "Test log message")

	select {
	case msg := <-messageChan:
		if msg.Message != "Test log message\n" {
			t.Errorf("Expected message 'Test log message\\n', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if msg.RenderID != "test-render-123" {
			t.Errorf("Expected render id, got '%s'", msg.RenderID)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}

	if out.String() != "[test-render-123] Test log message\n" {
		t.Errorf("Unexpected mirrored output %q", out.String())
	}
}

func TestWebLogger_MultipleMessagesKeepOrder(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger, _ := newTestLogger("test-render-456", messageChan)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s\n", msg)
	}

	for i, expected := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != expected+"\n" {
				t.Errorf("Message %d: expected '%s', got '%s'", i, expected, msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestWebLogger_ChannelFullDoesNotBlock(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger, out := newTestLogger("test-render-789", messageChan)

	done := make(chan struct{})
	go func() {
		logger.Printf("Message 1\n")
		logger.Printf("Message 2\n")
		logger.Printf("Message 3\n")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Printf blocked on a full channel")
	}

	if msg := <-messageChan; msg.Message != "Message 1\n" {
		t.Errorf("Expected the first message to be kept, got %q", msg.Message)
	}
	// Dropped messages still reach the mirror
	if !bytes.Contains(out.Bytes(), []byte("Message 3")) {
		t.Errorf("Expected all messages mirrored, got %q", out.String())
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger, out := newTestLogger("test-render-nil", nil)
	logger.Printf("Test message with nil channel\n")
	if out.Len() == 0 {
		t.Error("Expected mirrored output with a nil channel")
	}
}

func TestMessageLevel(t *testing.T) {
	tests := []struct {
		message  string
		expected string
	}{
		{"Pass 1: Target 1 samples per pixel\n", "info"},
		{"Error encoding tile\n", "error"},
		{"Warning: large image\n", "warning"},
		{"Rendering cancelled before pass 3\n", "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := messageLevel(tt.message); got != tt.expected {
				t.Errorf("messageLevel(%q) = %q, expected %q", tt.message, got, tt.expected)
			}
		})
	}
}

func TestConsoleMessage_JSON(t *testing.T) {
	msg := ConsoleMessage{RenderID: "r1", Message: "hello", Timestamp: time.Unix(0, 0).UTC(), Level: "info"}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"renderId", "message", "timestamp", "level"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}
}
