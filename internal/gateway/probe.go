package gateway

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/oquants/tradewatch/internal/poll"
	"github.com/oquants/tradewatch/pkg/types"
)

// v100+ API handshake constants. The client announces the version range it
// speaks; the gateway answers with its server version and connection time.
const (
	apiPrefix       = "API\x00"
	minClientVer    = 100
	maxClientVer    = 176
	maxReplyPayload = 4096
)

// SessionProbe opens a short-lived API session against the gateway to
// confirm it is accepting and answering connections.
type SessionProbe struct {
	Host     string
	Port     int
	ClientID int
	Timeout  time.Duration
}

// NewSessionProbe creates a probe for the given endpoint. A zero timeout
// defaults to 5s, covering dial plus handshake reply.
func NewSessionProbe(host string, port, clientID int) *SessionProbe {
	if host == "" {
		host = "127.0.0.1"
	}
	return &SessionProbe{
		Host:     host,
		Port:     port,
		ClientID: clientID,
		Timeout:  5 * time.Second,
	}
}

// Check performs one readiness probe. Every failure mode maps to an Error
// outcome so the orchestrator retries it like a miss.
func (p *SessionProbe) Check(ctx context.Context) types.Outcome {
	version, err := p.handshake(ctx)
	if err != nil {
		return types.ProbeError(err.Error())
	}
	if version < 1 {
		return types.ProbeError(fmt.Sprintf("gateway answered with invalid server version %d", version))
	}
	return types.Found()
}

// Probe adapts the session probe to the orchestrator's probe contract.
func (p *SessionProbe) Probe() poll.Probe {
	return p.Check
}

// Up reports whether the gateway is currently accepting API connections.
// Used by the bootstrapper to decide whether a start is needed at all.
func (p *SessionProbe) Up(ctx context.Context) bool {
	return p.Check(ctx).Status == types.OutcomeFound
}

// handshake dials the API port, sends the v100+ greeting and reads the
// server version reply.
func (p *SessionProbe) handshake(ctx context.Context) (int, error) {
	addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	greeting := fmt.Sprintf("v%d..%d", minClientVer, maxClientVer)
	msg := make([]byte, 0, len(apiPrefix)+4+len(greeting))
	msg = append(msg, apiPrefix...)
	msg = binary.BigEndian.AppendUint32(msg, uint32(len(greeting)))
	msg = append(msg, greeting...)
	if _, err := conn.Write(msg); err != nil {
		return 0, fmt.Errorf("sending handshake to %s: %w", addr, err)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return 0, fmt.Errorf("reading handshake reply from %s: %w", addr, err)
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if size == 0 || size > maxReplyPayload {
		return 0, fmt.Errorf("unexpected handshake reply length %d from %s", size, addr)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, fmt.Errorf("reading handshake payload from %s: %w", addr, err)
	}

	// Payload is NUL-separated fields: server version, connection time.
	fields := strings.Split(strings.TrimRight(string(payload), "\x00"), "\x00")
	version, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("parsing server version %q: %w", fields[0], err)
	}
	return version, nil
}
