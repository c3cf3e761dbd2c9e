package http

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var headerTerminator = []byte("\r\n\r\n")

// ParseRequest decodes one HTTP/1.1 request from data.
//
// data is expected to hold the whole message. Body bytes beyond what the
// buffer holds are not waited for: the body is truncated to what is
// available after the separator.
func ParseRequest(data []byte) (*Request, error) {
	headerEnd := bytes.Index(data, headerTerminator)
	if headerEnd == -1 {
		return nil, ErrMalformedFraming
	}

	headerData := data[:headerEnd]
	bodyData := data[headerEnd+len(headerTerminator):]

	if !utf8.Valid(headerData) {
		return nil, ErrInvalidEncoding
	}

	lines := strings.Split(string(headerData), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	// Parse METHOD PATH PROTO
	parts := strings.Fields(lines[0])
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 parts, got %d", ErrMalformedRequestLine, len(parts))
	}

	req := &Request{
		Method:  parts[0],
		Path:    parts[1],
		Proto:   parts[2],
		Headers: make(map[string]string, len(lines)-1),
	}

	if err := parseHeaders(req, lines[1:]); err != nil {
		return nil, err
	}

	n := contentLength(req)
	if n > len(bodyData) {
		n = len(bodyData)
	}
	req.Body = append([]byte(nil), bodyData[:n]...)

	return req, nil
}

// parseHeaders stores each "Name: value" line up to the first empty line.
func parseHeaders(req *Request, lines []string) error {
	for _, line := range lines {
		if line == "" {
			break
		}

		kv := strings.Split(line, ": ")
		if len(kv) != 2 {
			return fmt.Errorf("%w: expected 2 parts, got %d", ErrMalformedHeader, len(kv))
		}
		req.Headers[kv[0]] = kv[1]
	}
	return nil
}

// contentLength returns the declared body length, or 0 when the header is
// absent, unparseable or negative.
func contentLength(req *Request) int {
	v, ok := req.Headers[HeaderContentLength]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
