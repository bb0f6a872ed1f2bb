package backend

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Event is one decoded server-sent event: its event name and raw JSON data.
type Event struct {
	Type string
	Data json.RawMessage
}

// Well-known event names emitted by the deploy stream.
const (
	EventLog           = "log"
	EventModelStart    = "model_start"
	EventModelComplete = "model_complete"
	EventComplete      = "complete"
	EventError         = "error"
	EventClose         = "close"
)

// Stream decodes a text/event-stream body into ordered events. Events are
// yielded strictly in arrival order; frames with invalid JSON payloads are
// skipped with a warning and the stream continues.
type Stream struct {
	body   io.ReadCloser
	r      *bufio.Reader
	logger *slog.Logger
}

// NewStream wraps an SSE response body. The caller must Close the stream.
func NewStream(body io.ReadCloser, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		body:   body,
		r:      bufio.NewReader(body),
		logger: logger,
	}
}

// Next returns the next event. It returns io.EOF when the stream ends. A
// stream that ends mid-frame yields the partial frame if it has both an event
// name and valid data, then io.EOF.
func (s *Stream) Next() (Event, error) {
	var (
		eventType string
		data      strings.Builder
	)

	flush := func() (Event, bool) {
		if eventType == "" && data.Len() == 0 {
			return Event{}, false
		}
		if eventType == "" {
			// Per the SSE spec the default event name is "message"; the
			// engine always names its events, so treat this as malformed.
			s.logger.Warn("dropping stream frame without event name", "data_len", data.Len())
			return Event{}, false
		}
		raw := json.RawMessage(data.String())
		if !json.Valid(raw) {
			s.logger.Warn("dropping stream frame with invalid payload", "event", eventType)
			return Event{}, false
		}
		return Event{Type: eventType, Data: raw}, true
	}

	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if ev, ok := flush(); ok {
					return ev, nil
				}
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			// Frame boundary.
			if ev, ok := flush(); ok {
				return ev, nil
			}
			eventType = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// Comment/keep-alive line, ignore.
		default:
			s.logger.Warn("ignoring unrecognised stream line", "line", line)
		}
	}
}

// Close releases the underlying response body. Closing does not cancel the
// backend's deployment job; it only stops this reader.
func (s *Stream) Close() error {
	return s.body.Close()
}
