package service

import (
	"errors"
	"io"

	"github.com/tmaxmax/go-sse"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
)

// maxEventSize bounds one event of the notification stream.
const maxEventSize = 1 << 20

// bodyReader remembers the first read error of the stream body other than io.EOF.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && b.err == nil && !errors.Is(err, io.EOF) {
		b.err = err
	}
	return n, err
}

// readEvents calls fn for every event of a text/event-stream body as soon as it
// is complete. Read failures of r are returned unchanged; anything the parser
// rejects, including an event over maxEventSize, is a *StreamFormatError.
func readEvents(r io.Reader, fn func(sse.Event) error) error {
	body := &bodyReader{r: r}
	for ev, err := range sse.Read(body, &sse.ReadConfig{MaxEventSize: maxEventSize}) {
		if err != nil {
			if body.err != nil {
				return body.err
			}
			return &engineDomain.StreamFormatError{Err: err}
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}
