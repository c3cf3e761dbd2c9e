package core

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/searchktools/tiny-server/core/compress"
	"github.com/searchktools/tiny-server/core/http"
	"github.com/searchktools/tiny-server/core/router"
)

// errPeerClosed ends the loop without being reported as a failure
var errPeerClosed = errors.New("peer closed connection")

// Connection drives the request cycle of one accepted socket
type Connection struct {
	engine *Engine
	conn   net.Conn
	state  connState
	served int
}

func newConnection(e *Engine, conn net.Conn) *Connection {
	return &Connection{
		engine: e,
		conn:   conn,
		state:  StateReading,
	}
}

// serve loops until the peer closes, asks to close, or an error occurs.
//
// Every iteration does exactly one Read into a fresh buffer and expects a
// whole request in it. Requests split across reads are not reassembled.
func (c *Connection) serve() error {
	for {
		c.state = StateReading
		req, err := c.readRequest()
		if err != nil {
			c.state = StateClosed
			if errors.Is(err, errPeerClosed) {
				return nil
			}
			return err
		}

		// Connection: close ends the loop before the request is handled
		if req.WantsClose() {
			c.state = StateClosed
			return nil
		}

		if err := c.respond(req); err != nil {
			c.state = StateClosed
			return err
		}
		c.served++
	}
}

// readRequest reads once and decodes what arrived
func (c *Connection) readRequest() (*http.Request, error) {
	e := c.engine
	buf := e.bytePool.Get(e.cfg.ReadBufferSize)
	defer e.bytePool.Put(buf)

	n, err := c.conn.Read(buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, errPeerClosed
		}
		return nil, fmt.Errorf("%w: read: %v", http.ErrIO, err)
	}

	// ParseRequest copies everything it keeps, so buf can go back to the pool
	c.state = StateDecoding
	req, err := http.ParseRequest(buf[:n])
	if err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// respond handles req and writes the encoded response
func (c *Connection) respond(req *http.Request) error {
	e := c.engine
	start := time.Now()

	c.state = StateHandling
	resp := e.router.Handle(req)

	if err := compress.Negotiate(resp, req); err != nil {
		e.log.Warn().Err(err).Str("path", req.Path).Msg("gzip failed, sending identity body")
	}

	// Every response is framed by Content-Length, including empty ones
	if _, ok := resp.Header(http.HeaderContentLength); !ok {
		resp.SetHeader(http.HeaderContentLength, strconv.Itoa(len(resp.Body)))
	}

	c.state = StateEncoding
	bufp := e.bufferPool.Get(resp.EncodedLen())
	*bufp = resp.AppendTo(*bufp)

	e.monitor.RecordRequest(router.MetricName(req.Method, req.Path), time.Since(start), resp.StatusCode >= 500)

	c.state = StateWriting
	_, err := c.conn.Write(*bufp)
	e.bufferPool.Put(bufp)
	if err != nil {
		return fmt.Errorf("%w: write: %v", http.ErrIO, err)
	}

	e.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")
	return nil
}
