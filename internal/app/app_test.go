package app

import (
	"net"
	"testing"
)

// testPipe returns an in-memory connection pair closed on test cleanup.
func testPipe(t *testing.T) (client, server net.Conn) {
	t.Helper()
	client, server = net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}
