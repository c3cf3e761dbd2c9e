package http

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseRequestBasic(t *testing.T) {
	raw := []byte("GET /echo/abc HTTP/1.1\r\nHost: localhost:4221\r\nUser-Agent: curl/8.4.0\r\n\r\n")

	req, err := ParseRequest(raw)
	if err != nil {
		t.Fatalf("ParseRequest error: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Expected method GET, got %s", req.Method)
	}
	if req.Path != "/echo/abc" {
		t.Errorf("Expected path /echo/abc, got %s", req.Path)
	}
	if req.Proto != "HTTP/1.1" {
		t.Errorf("Expected proto HTTP/1.1, got %s", req.Proto)
	}
	if ua, ok := req.Header("User-Agent"); !ok || ua != "curl/8.4.0" {
		t.Errorf("Expected User-Agent=curl/8.4.0, got %q (present=%v)", ua, ok)
	}
	if len(req.Body) != 0 {
		t.Errorf("Expected empty body, got %q", req.Body)
	}
}

// TestParseRequestLine checks that only 3-token request lines decode
func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"GET / HTTP/1.1", true},
		{"POST   /files/a   HTTP/1.1", true},
		{"GET\t/\tHTTP/1.1", true},
		{"GET /", false},
		{"GET", false},
		{"GET / HTTP/1.1 extra", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := ParseRequest([]byte(tt.line + "\r\n\r\n"))
		if tt.ok && err != nil {
			t.Errorf("Line %q: unexpected error %v", tt.line, err)
		}
		if !tt.ok && !errors.Is(err, ErrMalformedRequestLine) {
			t.Errorf("Line %q: expected ErrMalformedRequestLine, got %v", tt.line, err)
		}
	}
}

// TestParseHeaderLine checks the single ": " split rule
func TestParseHeaderLine(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{"Host: example.com", "Host", "example.com", true},
		{"X-Empty: ", "X-Empty", "", true},
		{"X-Time: 12:30", "X-Time", "12:30", true},
		{"Host:example.com", "", "", false},
		{"Host", "", "", false},
		{"X-Pair: a: b", "", "", false},
	}

	for _, tt := range tests {
		req, err := ParseRequest([]byte("GET / HTTP/1.1\r\n" + tt.line + "\r\n\r\n"))
		if !tt.ok {
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("Header %q: expected ErrMalformedHeader, got %v", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Header %q: unexpected error %v", tt.line, err)
			continue
		}
		if got, present := req.Header(tt.key); !present || got != tt.value {
			t.Errorf("Header %q: expected %s=%q, got %q", tt.line, tt.key, tt.value, got)
		}
	}
}

func TestParseHeadersCaseSensitiveLastWins(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Dup: one\r\nx-dup: lower\r\nX-Dup: two\r\n\r\n"

	req, err := ParseRequest([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRequest error: %v", err)
	}

	if v, _ := req.Header("X-Dup"); v != "two" {
		t.Errorf("Expected X-Dup=two, got %q", v)
	}
	if v, _ := req.Header("x-dup"); v != "lower" {
		t.Errorf("Expected x-dup=lower, got %q", v)
	}
}

func TestParseRequestFramingErrors(t *testing.T) {
	if _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHost: x\r\n")); !errors.Is(err, ErrMalformedFraming) {
		t.Errorf("Expected ErrMalformedFraming, got %v", err)
	}

	bad := []byte("GET /\xff\xfe HTTP/1.1\r\n\r\n")
	if _, err := ParseRequest(bad); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got %v", err)
	}

	// Non-UTF-8 bytes in the body are fine
	ok := []byte("POST / HTTP/1.1\r\nContent-Length: 2\r\n\r\n\xff\xfe")
	req, err := ParseRequest(ok)
	if err != nil {
		t.Fatalf("Unexpected error for binary body: %v", err)
	}
	if !bytes.Equal(req.Body, []byte{0xff, 0xfe}) {
		t.Errorf("Expected binary body, got %v", req.Body)
	}
}

func TestParseRequestBodyLength(t *testing.T) {
	tests := []struct {
		name   string
		header string
		tail   string
		want   string
	}{
		{"exact", "Content-Length: 5\r\n", "hello", "hello"},
		{"trailing bytes ignored", "Content-Length: 5\r\n", "hello world", "hello"},
		{"truncated to buffer", "Content-Length: 100\r\n", "short", "short"},
		{"missing header", "", "ignored", ""},
		{"unparseable", "Content-Length: abc\r\n", "ignored", ""},
		{"negative", "Content-Length: -4\r\n", "ignored", ""},
		{"zero fill", "Content-Length: 3\r\n", "abc\x00\x00\x00", "abc"},
	}

	for _, tt := range tests {
		raw := "POST /files/x HTTP/1.1\r\n" + tt.header + "Host: h\r\n\r\n" + tt.tail
		req, err := ParseRequest([]byte(raw))
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if string(req.Body) != tt.want {
			t.Errorf("%s: expected body %q, got %q", tt.name, tt.want, req.Body)
		}
	}
}

func TestParseRequestBodyIsCopied(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc")

	req, err := ParseRequest(raw)
	if err != nil {
		t.Fatalf("ParseRequest error: %v", err)
	}

	copy(raw[len(raw)-3:], "xyz")
	if string(req.Body) != "abc" {
		t.Errorf("Body must not alias the read buffer, got %q", req.Body)
	}
}

func TestRequestWantsClose(t *testing.T) {
	req, _ := ParseRequest([]byte("GET / HTTP/1.1\r\nConnection: close\r\n\r\n"))
	if !req.WantsClose() {
		t.Error("Expected WantsClose for Connection: close")
	}

	req, _ = ParseRequest([]byte("GET / HTTP/1.1\r\nConnection: keep-alive\r\n\r\n"))
	if req.WantsClose() {
		t.Error("Did not expect WantsClose for keep-alive")
	}
}

func BenchmarkParseRequest(b *testing.B) {
	raw := []byte("POST /files/report.txt HTTP/1.1\r\nHost: localhost:4221\r\nUser-Agent: bench\r\nContent-Length: 11\r\n\r\nhello world")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseRequest(raw); err != nil {
			b.Fatal(err)
		}
	}
}
