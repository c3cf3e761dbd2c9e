/*
Package tinyserver is a small HTTP/1.1 server with persistent connections and
gzip response negotiation.

# Routes

  - /                   200 with an empty body
  - /echo/<text>        200, body is <text>
  - /user-agent         200, body is the User-Agent header (500 when absent)
  - /files/<name>       GET reads and POST writes <directory><name>
  - anything else       404

A response is gzip-encoded when the request's Accept-Encoding contains
"gzip". Connections stay open until the client closes them or sends
"Connection: close".

Each request must arrive in a single read of the connection; chunked bodies
and pipelining are not supported.

# Modules

  - app: process lifecycle and logging
  - config: flags, environment and JSON configuration
  - core: listener, dispatcher and connection loop
  - core/http: request decoding and response encoding
  - core/router: route dispatch and the files capability
  - core/compress: gzip negotiation
  - core/pools: read and write buffer pools
  - core/observability: per-route request metrics
*/
package tinyserver
