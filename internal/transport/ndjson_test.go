// file: internal/transport/ndjson_test.go
package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireReply struct {
	ID    json.RawMessage `json:"id"`
	Error *jsonrpc2.Error `json:"error"`
}

func decodeReplies(t *testing.T, out *bytes.Buffer) []wireReply {
	t.Helper()
	var replies []wireReply
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var r wireReply
		require.NoError(t, json.Unmarshal([]byte(line), &r), "line: %s", line)
		replies = append(replies, r)
	}
	return replies
}

func TestNDJSONStream_ReadsRequestsAndSkipsNoise(t *testing.T) {
	input := strings.Join([]string{
		``,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`   `,
		`{"jsonrpc":"2.0","id":9,"result":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
	}, "\n")
	var out bytes.Buffer
	s := NewNDJSONStream(strings.NewReader(input), &out, nil, nil)

	var req jsonrpc2.Request
	require.NoError(t, s.ReadObject(&req))
	assert.Equal(t, "ping", req.Method)
	assert.False(t, req.Notif)

	var notif jsonrpc2.Request
	require.NoError(t, s.ReadObject(&notif))
	assert.Equal(t, "notifications/initialized", notif.Method)
	assert.True(t, notif.Notif)

	assert.ErrorIs(t, s.ReadObject(&jsonrpc2.Request{}), io.EOF)
	assert.Empty(t, out.String(), "Blank lines and responses get no reply.")
}

func TestNDJSONStream_AnswersMalformedLinesAndContinues(t *testing.T) {
	input := strings.Join([]string{
		`{not json`,
		`{"jsonrpc":"1.0","id":"x","method":"ping"}`,
		`[{"jsonrpc":"2.0","id":1,"method":"ping"}]`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n") + "\n"
	var out bytes.Buffer
	s := NewNDJSONStream(strings.NewReader(input), &out, nil, nil)

	var req jsonrpc2.Request
	require.NoError(t, s.ReadObject(&req))
	assert.Equal(t, "tools/list", req.Method)

	replies := decodeReplies(t, &out)
	require.Len(t, replies, 3)
	assert.Equal(t, "null", string(replies[0].ID))
	assert.EqualValues(t, -32700, replies[0].Error.Code)
	assert.Equal(t, `"x"`, string(replies[1].ID))
	assert.EqualValues(t, -32600, replies[1].Error.Code)
	assert.Equal(t, "null", string(replies[2].ID))
	assert.EqualValues(t, -32600, replies[2].Error.Code)
}

func TestNDJSONStream_DropsOversizedMessages(t *testing.T) {
	big := `{"jsonrpc":"2.0","id":1,"method":"ping","params":{"pad":"` + strings.Repeat("a", 200) + `"}}`
	input := big + "\n" + `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"
	var out bytes.Buffer
	s := NewNDJSONStream(strings.NewReader(input), &out, nil, nil, WithMaxMessageSize(64))

	var req jsonrpc2.Request
	require.NoError(t, s.ReadObject(&req))
	assert.Equal(t, jsonrpc2.ID{Num: 2}, req.ID)

	replies := decodeReplies(t, &out)
	require.Len(t, replies, 1)
	assert.EqualValues(t, -32600, replies[0].Error.Code)
}

func TestNDJSONStream_RunsEOFHookBeforeReturning(t *testing.T) {
	var out bytes.Buffer
	var s *NDJSONStream
	drained := false
	s = NewNDJSONStream(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), &out, nil, nil,
		WithOnEOF(func() {
			drained = true
			assert.NoError(t, s.WriteObject(map[string]int{"id": 1}), "stream is writable while draining")
		}))

	var req jsonrpc2.Request
	require.NoError(t, s.ReadObject(&req), "A final line without a newline is still read.")
	assert.False(t, drained)
	assert.ErrorIs(t, s.ReadObject(&req), io.EOF)
	assert.True(t, drained)
	assert.Equal(t, "{\"id\":1}\n", out.String())
}

func TestNDJSONStream_WriteObjectAndClose(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()
	var out bytes.Buffer
	s := NewNDJSONStream(pr, &out, pw, nil)

	require.NoError(t, s.WriteObject(map[string]string{"jsonrpc": "2.0"}))
	assert.Equal(t, "{\"jsonrpc\":\"2.0\"}\n", out.String())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent.")

	err := s.WriteObject(map[string]string{})
	assert.True(t, IsClosedError(err))
	assert.True(t, IsClosedError(s.ReadObject(&jsonrpc2.Request{})))
}
