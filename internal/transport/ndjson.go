// file: internal/transport/ndjson.go
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/sourcegraph/jsonrpc2"
)

// MaxMessageSize is the largest accepted message in bytes, excluding the newline.
const MaxMessageSize = 1024 * 1024

// NDJSONStream is a jsonrpc2.ObjectStream carrying one JSON message per line.
//
// Lines that are not valid JSON-RPC messages are answered with a parse or
// invalid request error and skipped, so one bad line does not end the
// connection. Blank lines are ignored. Inbound responses are dropped since
// this side never issues requests.
type NDJSONStream struct {
	reader  *bufio.Reader
	writer  io.Writer
	closer  io.Closer
	logger  logging.Logger
	maxSize int
	onEOF   func()

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

var _ jsonrpc2.ObjectStream = (*NDJSONStream)(nil)

// StreamOption configures an NDJSONStream.
type StreamOption func(*NDJSONStream)

// WithMaxMessageSize overrides MaxMessageSize.
func WithMaxMessageSize(n int) StreamOption {
	return func(s *NDJSONStream) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithOnEOF registers fn to run when the input ends, before ReadObject reports
// io.EOF. The connection stays writable while fn runs.
func WithOnEOF(fn func()) StreamOption {
	return func(s *NDJSONStream) {
		s.onEOF = fn
	}
}

// NewNDJSONStream reads from r and writes to w. closer, if not nil, is closed by Close.
func NewNDJSONStream(r io.Reader, w io.Writer, closer io.Closer, logger logging.Logger, opts ...StreamOption) *NDJSONStream {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	s := &NDJSONStream{
		reader:  bufio.NewReader(r),
		writer:  w,
		closer:  closer,
		logger:  logger.WithField("component", "ndjson_stream"),
		maxSize: MaxMessageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadObject decodes the next valid message into v.
func (s *NDJSONStream) ReadObject(v interface{}) error {
	for {
		if s.isClosed() {
			return NewClosedError("read")
		}

		line, err := s.readLine()
		if err != nil {
			var sizeErr *Error
			if errors.As(err, &sizeErr) && sizeErr.Code == ErrMessageTooLarge {
				s.logger.Warn("Dropped oversized message.", "error", sizeErr)
				s.replyFramingError(sizeErr)
				continue
			}
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input stream ended.")
				if s.onEOF != nil {
					s.onEOF()
				}
				return io.EOF
			}
			return NewError(ErrGeneric, "failed to read message line", err)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		env, err := Inspect(line)
		if err != nil {
			var framingErr *Error
			if errors.As(err, &framingErr) {
				s.logger.Warn("Rejected malformed message.", "error", framingErr)
				s.replyFramingError(framingErr)
			}
			continue
		}
		if env.Kind == KindResponse {
			s.logger.Debug("Ignoring inbound response.", "id", string(env.ID))
			continue
		}

		if err := json.Unmarshal(line, v); err != nil {
			invalid := NewInvalidMessageError("message could not be decoded", line)
			invalid.ID = env.ID
			s.logger.Warn("Rejected undecodable message.", "error", err)
			s.replyFramingError(invalid)
			continue
		}
		s.logger.Debug("Received message.", "method", env.Method, "id", string(env.ID), "size", len(line))
		return nil
	}
}

// WriteObject encodes obj as one line.
func (s *NDJSONStream) WriteObject(obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, "ndjson: failed to encode message")
	}
	return s.writeLine(data)
}

// Close closes the underlying closer, if any. Closing twice is a no-op.
func (s *NDJSONStream) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return NewError(ErrTransportClosed, "failed to close underlying stream", err)
		}
	}
	return nil
}

func (s *NDJSONStream) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}

// readLine returns the next line without its terminator. A line longer than
// maxSize is consumed entirely and reported as ErrMessageTooLarge. A final
// line without a newline is still returned.
func (s *NDJSONStream) readLine() ([]byte, error) {
	var buf bytes.Buffer
	total := 0
	tooLarge := false
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (buf.Len() > 0 || tooLarge) {
				break
			}
			return nil, err
		}
		total += len(chunk)
		if total > s.maxSize {
			tooLarge = true
		} else {
			buf.Write(chunk)
		}
		if !isPrefix {
			break
		}
	}
	if tooLarge {
		return nil, NewMessageSizeError(total, s.maxSize)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\r")), nil
}

func (s *NDJSONStream) writeLine(data []byte) error {
	if s.isClosed() {
		return NewClosedError("write")
	}
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	buf[len(data)] = '\n'

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	n, err := s.writer.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return NewError(ErrGeneric, "failed to write message", err)
	}
	return nil
}

// replyFramingError answers a rejected line. The id is echoed when it was
// readable and is null otherwise.
func (s *NDJSONStream) replyFramingError(ferr *Error) {
	id := json.RawMessage("null")
	if len(ferr.ID) > 0 {
		id = ferr.ID
	}
	resp := struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   *jsonrpc2.Error `json:"error"`
	}{JSONRPC: "2.0", ID: id, Error: ErrorResponse(ferr)}

	if err := s.WriteObject(resp); err != nil {
		s.logger.Error("Failed to write framing error response.", "error", err)
	}
}
