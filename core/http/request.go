package http

// HTTP header constants
const (
	HeaderContentType     = "Content-Type"
	HeaderContentLength   = "Content-Length"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderUserAgent       = "User-Agent"
	HeaderConnection      = "Connection"
)

// Request is a decoded HTTP/1.1 request.
//
// Header names are case-sensitive and stored exactly as received. A Request
// is never modified after ParseRequest returns it.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers map[string]string
	Body    []byte
}

// Header returns the value stored under name and whether it was present.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[name]
	return v, ok
}

// WantsClose reports whether the client sent "Connection: close".
func (r *Request) WantsClose() bool {
	v, ok := r.Headers[HeaderConnection]
	return ok && v == "close"
}
