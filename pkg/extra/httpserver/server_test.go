package httpserver

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebastien/extra/pkg/extra/httpwire"
)

// startTestServer brings up a real TCP listener running handler and returns
// its address plus a cleanup func. Mirrors spec.md §8's end-to-end scenarios,
// which are phrased in terms of bytes sent and received over a real socket.
func startTestServer(t *testing.T, handler Handler) (addr string, stop func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(Config{
		Handler:      handler,
		IdleTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	go srv.Serve(ln)

	return ln.Addr().String(), func() {
		srv.Close()
	}
}

// TestPipeliningPreservesOrder implements spec.md §8 scenario 1: two
// pipelined GETs on one connection must come back as two 200s, in order,
// with bodies derived from each request's own path.
func TestPipeliningPreservesOrder(t *testing.T) {
	addr, stop := startTestServer(t, func(w *httpwire.ResponseWriter, r *httpwire.Request) {
		path := r.Path()
		w.WriteText(200, []byte(strings.ToUpper(path[len(path)-1:])))
	})
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(
		"GET /a HTTP/1.1\r\nHost: x\r\n\r\n" +
			"GET /b HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	first := readHTTPResponse(t, r)
	second := readHTTPResponse(t, r)

	require.Equal(t, "200", first.status)
	require.Equal(t, "A", first.body)
	require.Equal(t, "200", second.status)
	require.Equal(t, "B", second.body)
}

// TestRequestErrorShortCircuits verifies a handler-raised RequestError
// produces the requested status/content-type/payload instead of a canned
// 500 (spec.md §7, SPEC_FULL.md §6's RequestError supplement).
func TestRequestErrorShortCircuits(t *testing.T) {
	addr, stop := startTestServer(t, func(w *httpwire.ResponseWriter, r *httpwire.Request) {
		panic(httpwire.NewRequestError(418, "teapot"))
	})
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /brew HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	require.NoError(t, err)

	resp := readHTTPResponse(t, bufio.NewReader(conn))
	require.Equal(t, "418", resp.status)
	require.Equal(t, "teapot", resp.body)
}

type parsedResponse struct {
	status string
	body   string
}

func readHTTPResponse(t *testing.T, r *bufio.Reader) parsedResponse {
	t.Helper()

	statusLine, err := r.ReadString('\n')
	require.NoError(t, err)

	fields := strings.Fields(strings.TrimSpace(statusLine))
	require.GreaterOrEqual(t, len(fields), 2)
	status := fields[1]

	contentLength := 0
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			break
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "content-length:") {
			n, convErr := strconv.Atoi(strings.TrimSpace(line[len("content-length:"):]))
			require.NoError(t, convErr)
			contentLength = n
		}
	}

	body := make([]byte, contentLength)
	_, err = io.ReadFull(r, body)
	require.NoError(t, err)

	return parsedResponse{status: status, body: string(body)}
}
