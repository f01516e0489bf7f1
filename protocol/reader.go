package protocol

import (
	"bufio"
	"bytes"
	"chat-relay/errors"
	"io"
)

// LineReader splits a byte stream into protocol lines. Bytes read past the
// end of a line stay buffered and are returned by the next call, so a
// LineReader must be kept for the whole life of a connection.
//
// A LineReader is not safe for concurrent use; a connection has exactly one
// reading goroutine.
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	// room for the longest line plus "\r\n"
	return &LineReader{r: bufio.NewReaderSize(r, MaxLineLength+2)}
}

// ReadLine blocks until a full line is available and returns it without its
// terminator. A line longer than MaxLineLength is consumed up to its
// terminator and reported as errors.ErrLineTooLong; the reader stays usable.
// Any other error (io.EOF included) means the stream is gone.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		for err == bufio.ErrBufferFull {
			_, err = l.r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errors.ErrLineTooLong
	}
	if err != nil {
		return "", err
	}
	line = bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'})
	return string(line), nil
}

// WriteMessage encodes m and writes it followed by a newline.
func WriteMessage(w io.Writer, m Message) error {
	_, err := io.WriteString(w, Encode(m)+"\n")
	return err
}
