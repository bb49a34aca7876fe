package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// decodeBody unwraps the response body according to Content-Encoding.
// Setting Accept-Encoding by hand turns off net/http's transparent gzip
// handling, so decoding is done here.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	switch encoding {
	case "", "identity":
		return resp.Body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		return &wrappedBody{Reader: zr, closers: []io.Closer{zr, resp.Body}}, nil
	case "deflate":
		return inflate(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding: %s", encoding)
	}
}

// inflate handles "deflate" bodies. The encoding is meant to be zlib-wrapped
// but some servers send raw deflate streams, so both are accepted.
func inflate(body io.ReadCloser) (io.ReadCloser, error) {
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading deflate body: %w", err)
	}

	if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		return zr, nil
	}
	return flate.NewReader(bytes.NewReader(raw)), nil
}

// wrappedBody closes the decoder and the underlying body together
type wrappedBody struct {
	io.Reader
	closers []io.Closer
}

func (w *wrappedBody) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
