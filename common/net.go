package common

import (
	"net"
)

// PickPort returns a free TCP port on host, or 0 when none could be bound.
// For testing only.
func PickPort(host string) int {
	for retry := 0; retry < 16; retry++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
		if err != nil {
			continue
		}
		port := l.Addr().(*net.TCPAddr).Port
		l.Close()
		return port
	}
	return 0
}

// Must panics on err, for setup code that can not continue without it
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
