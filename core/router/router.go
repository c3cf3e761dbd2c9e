// Package router maps decoded requests to responses.
package router

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/searchktools/tiny-server/config"
	"github.com/searchktools/tiny-server/core/http"
)

// route is the closed set of first path segments the server understands
type route int

const (
	routeRoot route = iota
	routeEcho
	routeUserAgent
	routeFiles
	routeUnknown
)

var routeNames = map[string]route{
	"echo":       routeEcho,
	"user-agent": routeUserAgent,
	"files":      routeFiles,
}

func (r route) String() string {
	switch r {
	case routeRoot:
		return "/"
	case routeEcho:
		return "/echo"
	case routeUserAgent:
		return "/user-agent"
	case routeFiles:
		return "/files"
	default:
		return "unknown"
	}
}

// lookupRoute classifies the first path segment
func lookupRoute(segments []string) route {
	if len(segments) == 0 {
		return routeRoot
	}
	if r, ok := routeNames[segments[0]]; ok {
		return r
	}
	return routeUnknown
}

// Segments splits path on "/" and drops empty segments, so "/a//b/" and
// "/a/b" are equivalent.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// RouteName returns the metrics label of the route path dispatches to.
func RouteName(path string) string {
	return lookupRoute(Segments(path)).String()
}

// MetricName returns the metrics series for a request. Methods other than
// GET and POST share the OTHER label so clients cannot mint new series.
func MetricName(method, path string) string {
	switch method {
	case "GET", "POST":
	default:
		method = "OTHER"
	}
	return method + " " + RouteName(path)
}

// Router is the request handler. It holds its own copy of the configuration.
type Router struct {
	cfg config.Config
	fs  FileSystem
	log zerolog.Logger
}

// New creates a router. A nil fsys means the local disk.
func New(cfg config.Config, fsys FileSystem, log zerolog.Logger) *Router {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Router{
		cfg: cfg,
		fs:  fsys,
		log: log,
	}
}

// Handle always produces a response; handler errors become 500s.
func (rt *Router) Handle(req *http.Request) *http.Response {
	segments := Segments(req.Path)
	r := lookupRoute(segments)

	resp, err := rt.dispatch(r, req, segments)
	if err != nil {
		level := zerolog.WarnLevel
		if errors.Is(err, http.ErrIO) {
			level = zerolog.ErrorLevel
		}
		rt.log.WithLevel(level).Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("handler failed")
		return http.InternalServerError()
	}
	return resp
}

func (rt *Router) dispatch(r route, req *http.Request, segments []string) (*http.Response, error) {
	switch r {
	case routeRoot:
		return http.OK(), nil
	case routeEcho:
		return handleEcho(segments), nil
	case routeUserAgent:
		return handleUserAgent(req)
	case routeFiles:
		return rt.handleFiles(req, segments)
	default:
		return http.NotFound(), nil
	}
}

func handleEcho(segments []string) *http.Response {
	var body string
	if len(segments) > 1 {
		body = segments[1]
	}
	return textResponse(body)
}

func handleUserAgent(req *http.Request) (*http.Response, error) {
	ua, ok := req.Header(http.HeaderUserAgent)
	if !ok {
		return nil, http.ErrMissingHeader
	}
	return textResponse(ua), nil
}

func textResponse(body string) *http.Response {
	resp := http.OK()
	resp.SetHeader(http.HeaderContentType, "text/plain")
	resp.SetHeader(http.HeaderContentLength, strconv.Itoa(len(body)))
	resp.SetBody([]byte(body))
	return resp
}
