package router

import (
	"fmt"
	"strconv"

	"github.com/searchktools/tiny-server/core/http"
)

// handleFiles serves GET and POST under /files/<name>.
//
// The file path is cfg.Directory + name with no cleaning: ".." is not
// rejected and a directory without a trailing separator yields a
// malformed path.
func (rt *Router) handleFiles(req *http.Request, segments []string) (*http.Response, error) {
	if len(segments) < 2 || !rt.cfg.HasDirectory() {
		return http.NotFound(), nil
	}
	name := rt.cfg.Directory + segments[1]

	switch req.Method {
	case "GET":
		return rt.readFile(name)
	case "POST":
		return rt.writeFile(name, req.Body)
	default:
		return nil, fmt.Errorf("%w: %s on files", http.ErrUnsupportedMethod, req.Method)
	}
}

func (rt *Router) readFile(name string) (*http.Response, error) {
	info, err := rt.fs.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return http.NotFound(), nil
	}

	data, err := rt.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", http.ErrIO, name, err)
	}

	resp := http.OK()
	resp.SetHeader(http.HeaderContentType, "application/octet-stream")
	resp.SetHeader(http.HeaderContentLength, strconv.Itoa(len(data)))
	resp.SetBody(data)
	return resp, nil
}

func (rt *Router) writeFile(name string, body []byte) (*http.Response, error) {
	if err := rt.fs.WriteFile(name, body); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", http.ErrIO, name, err)
	}
	return http.Created(), nil
}
