package utils

import (
	"fmt"
	"net"
	"time"
)

// IsPortInUse reports whether something accepts tcp connections on the
// given local port.
func IsPortInUse(port int) bool {
	if port <= 0 || port > 65535 {
		return false
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), time.Second)

	if err != nil {
		return false
	}

	conn.Close()
	return true
}
