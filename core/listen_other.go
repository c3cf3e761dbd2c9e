//go:build !unix

package core

import "net"

func listenConfig() net.ListenConfig {
	return net.ListenConfig{}
}
