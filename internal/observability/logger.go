package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan         EventType = "plan"
	EventTypeSafetyCheck  EventType = "safety_check"
	EventTypeConfirmation EventType = "confirmation"
	EventTypeStep         EventType = "step"
	EventTypeTurn         EventType = "turn"
	EventTypeHeartbeat    EventType = "heartbeat"
	EventTypeLLM          EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	Session   string    `json:"session,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger emits structured JSON events. LLM exchanges are additionally
// mirrored to a size-rotated jsonl file for offline inspection.
type Logger struct {
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		out:        os.Stdout,
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to the output stream.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(l.out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(session, raw string, plan any) {
	l.Log(Event{
		Type:    EventTypePlan,
		Session: session,
		Data:    map[string]any{"raw": raw, "plan": plan},
	})
}

func (l *Logger) LogSafetyCheck(session string, verdict any) {
	l.Log(Event{
		Type:    EventTypeSafetyCheck,
		Session: session,
		Data:    verdict,
	})
}

func (l *Logger) LogConfirmation(session string, confirmed bool) {
	l.Log(Event{
		Type:    EventTypeConfirmation,
		Session: session,
		Data:    map[string]bool{"confirmed": confirmed},
	})
}

func (l *Logger) LogStep(session string, result any) {
	l.Log(Event{
		Type:    EventTypeStep,
		Session: session,
		Data:    result,
	})
}

func (l *Logger) LogTurn(session string, record any) {
	l.Log(Event{
		Type:    EventTypeTurn,
		Session: session,
		Data:    record,
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(lane, prompt, response string, toolCalls any) {
	l.Log(Event{
		Type: EventTypeLLM,
		Data: map[string]any{
			"lane":       lane,
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
