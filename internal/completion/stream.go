package completion

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

const (
	dataPrefix  = "data:"
	doneMarker  = "[DONE]"
	maxLoggedLn = 256
)

// errorFrame is how OpenRouter reports a failure after the stream started.
type errorFrame struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream yields text fragments from a server-sent event body. Lines are
// buffered until their newline arrives, so frames split across network
// reads decode intact.
type Stream struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
	done    bool
	skipped int
}

func newStream(body io.ReadCloser, logger *logging.Logger, m *metrics.ChatMetrics) *Stream {
	if logger == nil {
		logger = logging.Default()
	}
	return &Stream{
		body:    body,
		reader:  bufio.NewReader(body),
		logger:  logger,
		metrics: m,
	}
}

// Recv returns the next non-empty text fragment. It returns io.EOF once the
// terminator frame is seen or the body ends.
func (s *Stream) Recv() (string, error) {
	for !s.done {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("completion: read stream: %w", err)
			}
			s.done = true
		}
		text, finished := s.decodeLine(line)
		if finished {
			s.done = true
			break
		}
		if text != "" {
			return text, nil
		}
	}
	return "", io.EOF
}

// Skipped reports how many malformed frames were dropped.
func (s *Stream) Skipped() int {
	return s.skipped
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

func (s *Stream) decodeLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" {
		return "", false
	}
	if payload == doneMarker {
		return "", true
	}

	var frame openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		s.skipped++
		s.metrics.ObserveFrameSkipped()
		s.logger.Warn("completion: skipping malformed stream frame", "error", err, "frame", truncate(payload, maxLoggedLn))
		return "", false
	}
	if len(frame.Choices) == 0 {
		var ef errorFrame
		if json.Unmarshal([]byte(payload), &ef) == nil && ef.Error != nil {
			s.logger.Warn("completion: provider reported stream error", "message", ef.Error.Message)
		}
		return "", false
	}
	return frame.Choices[0].Delta.Content, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
