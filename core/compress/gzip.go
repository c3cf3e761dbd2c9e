// Package compress negotiates and applies response content encoding.
package compress

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/searchktools/tiny-server/core/http"
)

// EncodingGzip is the only content coding the server produces.
const EncodingGzip = "gzip"

var writerPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// Accepts reports whether an Accept-Encoding value admits gzip. The check
// is a plain substring match; q-values are not interpreted.
func Accepts(acceptEncoding string) bool {
	return strings.Contains(acceptEncoding, EncodingGzip)
}

// Negotiate gzips resp.Body in place when the client accepts gzip, and
// rewrites Content-Encoding and Content-Length to match. It must run once,
// after the body is final. On error resp is left unchanged.
func Negotiate(resp *http.Response, req *http.Request) error {
	acceptEncoding, ok := req.Header(http.HeaderAcceptEncoding)
	if !ok || !Accepts(acceptEncoding) {
		return nil
	}

	compressed, err := Gzip(resp.Body)
	if err != nil {
		return err
	}

	resp.SetBody(compressed)
	resp.SetHeader(http.HeaderContentEncoding, EncodingGzip)
	resp.SetHeader(http.HeaderContentLength, strconv.Itoa(len(compressed)))
	return nil
}

// Gzip compresses data at the default compression level.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw := writerPool.Get().(*gzip.Writer)
	defer writerPool.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	// Close flushes the final block and writes the gzip footer
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}

	return buf.Bytes(), nil
}
