package completion

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

func frame(content string) string {
	return `data: {"id":"gen-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"` + content + `"}}]}` + "\n\n"
}

func collect(t *testing.T, s *Stream) ([]string, error) {
	t.Helper()
	var out []string
	for {
		text, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, text)
	}
}

func testStream(r io.Reader) *Stream {
	return newStream(io.NopCloser(r), logging.New("error"), nil)
}

func TestStreamYieldsFragmentsInOrder(t *testing.T) {
	body := frame("Hel") + frame("lo") + "data: [DONE]\n\n"
	got, err := collect(t, testStream(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, got)
}

func TestStreamReassemblesFramesSplitAcrossReads(t *testing.T) {
	body := frame("one") + frame(" two") + frame(" three") + "data: [DONE]\n"
	got, err := collect(t, testStream(iotest.OneByteReader(strings.NewReader(body))))
	require.NoError(t, err)
	assert.Equal(t, "one two three", strings.Join(got, ""))
}

func TestStreamSkipsMalformedFrames(t *testing.T) {
	body := frame("a") + "data: {not json\n\n" + frame("b") + "data: [DONE]\n"
	s := testStream(strings.NewReader(body))
	got, err := collect(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, s.Skipped())
}

func TestStreamIgnoresCommentsAndEmptyDeltas(t *testing.T) {
	body := ": OPENROUTER PROCESSING\n\n" +
		"event: ping\n" +
		`data: {"choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}` + "\n\n" +
		`data: {"choices":[]}` + "\n\n" +
		`data: {"error":{"message":"provider hiccup"}}` + "\n\n" +
		frame("x") +
		"data: [DONE]\n\n"
	s := testStream(strings.NewReader(body))
	got, err := collect(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
	assert.Zero(t, s.Skipped())
}

func TestStreamStopsAtDoneMarker(t *testing.T) {
	body := frame("kept") + "data: [DONE]\n\n" + frame("ignored")
	got, err := collect(t, testStream(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, got)
}

func TestStreamHandlesFinalLineWithoutNewline(t *testing.T) {
	body := strings.TrimRight(frame("tail"), "\n")
	got, err := collect(t, testStream(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, []string{"tail"}, got)
}

func TestStreamHandlesCRLF(t *testing.T) {
	body := strings.ReplaceAll(frame("crlf")+"data: [DONE]\n", "\n", "\r\n")
	got, err := collect(t, testStream(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Equal(t, []string{"crlf"}, got)
}

func TestStreamSurfacesReadErrors(t *testing.T) {
	r := io.MultiReader(strings.NewReader(frame("partial")), iotest.ErrReader(errors.New("connection reset")))
	s := testStream(r)

	text, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", text)

	_, err = s.Recv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStreamRecvAfterCloseReturnsEOF(t *testing.T) {
	s := testStream(strings.NewReader(frame("never")))
	require.NoError(t, s.Close())
	_, err := s.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
