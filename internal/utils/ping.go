package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// authorizerPingTimeout bounds the reachability check done before talking to Authorizer
const authorizerPingTimeout = 1500 * time.Millisecond

// Reachable dials the host of serviceURL over TCP and closes the connection.
// The scheme only picks the default port.
func Reachable(ctx context.Context, serviceURL string) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("invalid URL: no host in %q", serviceURL)
	}

	port := parsed.Port()
	if port == "" {
		port = "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
	}
	address := net.JoinHostPort(parsed.Hostname(), port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks that the Authorizer service accepts connections
func PingAuthorizer(authzURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), authorizerPingTimeout)
	defer cancel()
	return Reachable(ctx, authzURL)
}
