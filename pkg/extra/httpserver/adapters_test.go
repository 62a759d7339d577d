package httpserver

import (
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebastien/extra/pkg/extra/httpbody"
	"github.com/sebastien/extra/pkg/extra/httpwire"
)

// TestServeBodyBlob exercises ServeBody's ordinary path: headers flushed
// through the ResponseWriter, payload drained via Body.WriteTo's io.Copy
// fallback (no sendfile involved for a KindBlob body).
func TestServeBodyBlob(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	rw := httpwire.NewResponseWriter(server)
	body := httpbody.NewBlob([]byte("hello, body"), "text/plain")

	done := make(chan error, 1)
	go func() {
		err := ServeBody(server, rw, 200, &body)
		server.Close()
		done <- err
	}()

	raw, err := io.ReadAll(client)
	require.NoError(t, err)

	out := string(raw)
	require.Contains(t, out, "200")
	require.Contains(t, out, "Content-Type: text/plain")
	require.Contains(t, out, "Content-Length: 11")
	require.Contains(t, out, "hello, body")

	require.NoError(t, <-done)
}

// TestServeBodyFile exercises ServeBody's KindFile path over a real TCP
// loopback connection, the only transport Body.WriteTo's sendfile fast
// path can engage on (net.Pipe's net.Conn isn't a *net.TCPConn).
func TestServeBodyFile(t *testing.T) {
	tmp, err := os.CreateTemp("", "servebody-*.txt")
	require.NoError(t, err)
	defer os.Remove(tmp.Name())
	content := "served from disk\n"
	_, err = tmp.WriteString(content)
	require.NoError(t, err)
	tmp.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serveErr := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serveErr <- err
			return
		}
		defer conn.Close()
		rw := httpwire.NewResponseWriter(conn)
		body := httpbody.NewFile(tmp.Name(), 0, int64(len(content)), "text/plain")
		serveErr <- ServeBody(conn, rw, 200, &body)
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	out, err := io.ReadAll(client)
	require.NoError(t, err)
	require.Contains(t, string(out), "Content-Length: "+itoaTest(len(content)))
	require.Contains(t, string(out), content)

	require.NoError(t, <-serveErr)
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
