package netutil

import (
	"errors"
	"net"
)

// ErrPrivateDestination is returned for hosts that resolve to private or
// reserved addresses.
var ErrPrivateDestination = errors.New("destination resolves to private/reserved address")

var privateNets = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, network)
		}
	}
	return nets
}()

// IsPrivateIP returns true if the IP is in a private, loopback, link-local or reserved range
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, network := range privateNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckHost rejects hosts that are, or resolve to, private addresses.
// Loopback stays allowed so local stubs keep working.
func CheckHost(host string) error {
	if host == "" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) && !ip.IsLoopback() {
			return ErrPrivateDestination
		}
		return nil
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		// Resolution failures surface from the request itself.
		return nil
	}
	for _, a := range addrs {
		if IsPrivateIP(a) && !a.IsLoopback() {
			return ErrPrivateDestination
		}
	}
	return nil
}
