package http

// Response is an HTTP/1.1 response under construction.
//
// Handlers fill it in; the content encoder may rewrite Body and the length
// headers before it is encoded to the wire.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// NewResponse creates an empty response with the given status code
func NewResponse(code int) *Response {
	return &Response{
		StatusCode: code,
		Headers:    make(map[string]string),
	}
}

func OK() *Response                  { return NewResponse(200) }
func Created() *Response             { return NewResponse(201) }
func NotFound() *Response            { return NewResponse(404) }
func InternalServerError() *Response { return NewResponse(500) }

// SetHeader sets a response header, replacing any previous value
func (r *Response) SetHeader(key, value string) {
	r.Headers[key] = value
}

// Header returns a response header value
func (r *Response) Header(key string) (string, bool) {
	v, ok := r.Headers[key]
	return v, ok
}

// SetBody replaces the response body
func (r *Response) SetBody(body []byte) {
	r.Body = body
}

// EncodedLen returns the exact number of bytes AppendTo will add.
func (r *Response) EncodedLen() int {
	n := len("HTTP/1.1 ") + digits(r.StatusCode) + 1 + len(statusText(r.StatusCode)) + 2
	for k, v := range r.Headers {
		n += len(k) + 2 + len(v) + 2
	}
	return n + 2 + len(r.Body)
}

// AppendTo appends the wire form of r to dst and returns the extended slice.
// Header order follows map iteration and is not stable.
func (r *Response) AppendTo(dst []byte) []byte {
	dst = append(dst, "HTTP/1.1 "...)
	dst = appendInt(dst, r.StatusCode)
	dst = append(dst, ' ')
	dst = append(dst, statusText(r.StatusCode)...)
	dst = append(dst, "\r\n"...)

	for k, v := range r.Headers {
		dst = append(dst, k...)
		dst = append(dst, ": "...)
		dst = append(dst, v...)
		dst = append(dst, "\r\n"...)
	}

	dst = append(dst, "\r\n"...)
	return append(dst, r.Body...)
}

// Encode returns the wire form of r in a newly allocated slice
func (r *Response) Encode() []byte {
	return r.AppendTo(make([]byte, 0, r.EncodedLen()))
}

// appendInt appends an integer to a byte slice
func appendInt(b []byte, i int) []byte {
	if i == 0 {
		return append(b, '0')
	}

	if i < 0 {
		b = append(b, '-')
		i = -i
	}

	n := digits(i)
	start := len(b)
	for j := 0; j < n; j++ {
		b = append(b, '0')
	}

	// Fill digits from right to left
	for j := n - 1; j >= 0; j-- {
		b[start+j] = byte('0' + i%10)
		i /= 10
	}

	return b
}

// digits returns the printed width of i, including a minus sign.
func digits(i int) int {
	if i == 0 {
		return 1
	}
	n := 0
	if i < 0 {
		n++
		i = -i
	}
	for i > 0 {
		n++
		i /= 10
	}
	return n
}

// statusText returns the HTTP status text for the given code
func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}
