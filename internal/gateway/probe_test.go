package gateway

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oquants/tradewatch/pkg/types"
)

// fakeGateway accepts one connection, consumes the client greeting and
// answers with the given NUL-separated payload.
func fakeGateway(t *testing.T, payload string) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		// Client greeting: "API\0" + framed version range.
		prefix := make([]byte, 4)
		if _, err := io.ReadFull(conn, prefix); err != nil {
			return
		}
		var lenBuf [4]byte
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		greeting := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}

		reply := make([]byte, 0, 4+len(payload))
		reply = binary.BigEndian.AppendUint32(reply, uint32(len(payload)))
		reply = append(reply, payload...)
		_, _ = conn.Write(reply)
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func TestSessionProbe_Found(t *testing.T) {
	port := fakeGateway(t, "176\x0020260826 09:00:00 EST\x00")

	probe := NewSessionProbe("127.0.0.1", port, 10)
	out := probe.Check(context.Background())
	assert.Equal(t, types.OutcomeFound, out.Status)
}

func TestSessionProbe_GreetingSent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		got <- string(buf[:n])
	}()

	probe := NewSessionProbe("127.0.0.1", ln.Addr().(*net.TCPAddr).Port, 10)
	probe.Check(context.Background())

	raw := <-got
	assert.True(t, strings.HasPrefix(raw, "API\x00"))
	assert.Contains(t, raw, "v100..176")
}

func TestSessionProbe_ConnectionRefused(t *testing.T) {
	// Grab a port and close it again so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	probe := NewSessionProbe("127.0.0.1", port, 10)
	out := probe.Check(context.Background())
	assert.Equal(t, types.OutcomeError, out.Status)
	assert.NotEmpty(t, out.Detail)
}

func TestSessionProbe_GarbageReply(t *testing.T) {
	port := fakeGateway(t, "not-a-version\x00")

	probe := NewSessionProbe("127.0.0.1", port, 10)
	out := probe.Check(context.Background())
	assert.Equal(t, types.OutcomeError, out.Status)
	assert.Contains(t, out.Detail, "parsing server version")
}

func TestSessionProbe_Up(t *testing.T) {
	port := fakeGateway(t, "176\x00")

	probe := NewSessionProbe("127.0.0.1", port, 10)
	assert.True(t, probe.Up(context.Background()))
}

func TestNewSessionProbe_Defaults(t *testing.T) {
	probe := NewSessionProbe("", types.LiveGatewayPort, 0)
	assert.Equal(t, "127.0.0.1", probe.Host)
	assert.Equal(t, 4001, probe.Port)
	assert.NotZero(t, probe.Timeout)
}
