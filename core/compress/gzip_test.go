package compress

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"strconv"
	"testing"

	"github.com/searchktools/tiny-server/core/http"
)

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()

	zr, err := stdgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip.NewReader error: %v", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip error: %v", err)
	}
	return out
}

func request(headers map[string]string) *http.Request {
	return &http.Request{Method: "GET", Path: "/echo/abc", Proto: "HTTP/1.1", Headers: headers}
}

func textResponse(body string) *http.Response {
	resp := http.OK()
	resp.SetHeader(http.HeaderContentType, "text/plain")
	resp.SetHeader(http.HeaderContentLength, strconv.Itoa(len(body)))
	resp.SetBody([]byte(body))
	return resp
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"gzip", true},
		{"deflate, gzip;q=0.5", true},
		{"invalid-1, gzip, invalid-2", true},
		{"x-gzip", true},
		{"deflate", false},
		{"", false},
		{"GZIP", false},
	}

	for _, tt := range tests {
		if got := Accepts(tt.value); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestNegotiateGzip(t *testing.T) {
	resp := textResponse("abc")

	if err := Negotiate(resp, request(map[string]string{"Accept-Encoding": "gzip"})); err != nil {
		t.Fatalf("Negotiate error: %v", err)
	}

	if v, _ := resp.Header(http.HeaderContentEncoding); v != "gzip" {
		t.Errorf("Expected Content-Encoding=gzip, got %q", v)
	}
	if v, _ := resp.Header(http.HeaderContentLength); v != strconv.Itoa(len(resp.Body)) {
		t.Errorf("Content-Length %s does not match compressed length %d", v, len(resp.Body))
	}
	if got := gunzip(t, resp.Body); string(got) != "abc" {
		t.Errorf("Expected abc after decompression, got %q", got)
	}
}

func TestNegotiateIdentity(t *testing.T) {
	for _, headers := range []map[string]string{
		nil,
		{"Accept-Encoding": "deflate, br"},
		{"accept-encoding": "gzip"}, // names are case-sensitive
	} {
		resp := textResponse("abc")
		if err := Negotiate(resp, request(headers)); err != nil {
			t.Fatalf("Negotiate error: %v", err)
		}
		if _, ok := resp.Header(http.HeaderContentEncoding); ok {
			t.Errorf("Headers %v: did not expect Content-Encoding", headers)
		}
		if string(resp.Body) != "abc" {
			t.Errorf("Headers %v: body changed to %q", headers, resp.Body)
		}
	}
}

func TestNegotiateEmptyBody(t *testing.T) {
	resp := http.OK()

	if err := Negotiate(resp, request(map[string]string{"Accept-Encoding": "gzip"})); err != nil {
		t.Fatalf("Negotiate error: %v", err)
	}
	if len(resp.Body) == 0 {
		t.Error("An empty body still gzips to a header and footer")
	}
	if got := gunzip(t, resp.Body); len(got) != 0 {
		t.Errorf("Expected empty payload, got %q", got)
	}
}

func TestGzipLargeRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("tiny-server "), 10000)

	for i := 0; i < 3; i++ { // exercises pooled writer reuse
		out, err := Gzip(data)
		if err != nil {
			t.Fatalf("Gzip error: %v", err)
		}
		if len(out) >= len(data) {
			t.Errorf("Expected repetitive data to shrink, %d >= %d", len(out), len(data))
		}
		if !bytes.Equal(gunzip(t, out), data) {
			t.Fatal("Round trip mismatch")
		}
	}
}

func BenchmarkGzip(b *testing.B) {
	data := bytes.Repeat([]byte("hello world "), 100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Gzip(data); err != nil {
			b.Fatal(err)
		}
	}
}
