// Package netinfo finds the addresses other devices on the LAN can use to reach this host.
package netinfo

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/jackpal/gateway"

	"lanshare/internal/logging"
)

// dockerBridge is the default docker0 network; addresses in it are useless to other devices.
var dockerBridge = &net.IPNet{IP: net.IPv4(172, 17, 0, 0).To4(), Mask: net.CIDRMask(16, 32)}

// Swapped in tests.
var (
	discoverGateway = gateway.DiscoverGateway
	interfaceAddrs  = allInterfaceAddrs
)

// iface is one network interface's addresses.
type iface struct {
	name  string
	addrs []net.Addr
}

// Discover returns the reachable IPv4 addresses of this host. The address on the
// interface facing the default gateway comes first when it can be determined;
// failing to find a gateway is logged, not fatal.
func Discover(log *slog.Logger) ([]net.IP, error) {
	ifaces, err := interfaceAddrs(log)
	if err != nil {
		return nil, err
	}

	ips := usableIPs(ifaces)

	gwIP, err := discoverGateway()
	if err != nil {
		log.Warn("failed to discover gateway", logging.Error(err))
		return ips, nil
	}

	primary := ipForGateway(ifaces, gwIP)
	if primary == nil {
		log.Warn("no local IPv4 address in the gateway subnet", slog.String("gateway", gwIP.String()))
		return ips, nil
	}
	return primaryFirst(ips, primary), nil
}

// URLs turns addresses into http base URLs on port, followed by localhost.
func URLs(ips []net.IP, port int) []string {
	p := strconv.Itoa(port)
	urls := make([]string, 0, len(ips)+1)
	for _, ip := range ips {
		urls = append(urls, "http://"+net.JoinHostPort(ip.String(), p))
	}
	return append(urls, "http://"+net.JoinHostPort("localhost", p))
}

func allInterfaceAddrs(log *slog.Logger) ([]iface, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve network interfaces: %w", err)
	}

	var out []iface
	for _, it := range interfaces {
		// Skip disabled network cards
		if it.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := it.Addrs()
		if err != nil {
			// One broken interface should not hide the others
			log.Warn("failed to get interface addresses", slog.String("interface", it.Name), logging.Error(err))
			continue
		}
		out = append(out, iface{name: it.Name, addrs: addrs})
	}
	return out, nil
}

// usableIPv4 extracts a global unicast, non docker-bridge IPv4 address from addr.
func usableIPv4(addr net.Addr) (net.IP, *net.IPNet) {
	ipnet, ok := addr.(*net.IPNet)
	if !ok {
		return nil, nil
	}
	ipv4 := ipnet.IP.To4()
	if ipv4 == nil || ipv4.IsLoopback() || !ipv4.IsGlobalUnicast() || dockerBridge.Contains(ipv4) {
		return nil, nil
	}
	return ipv4, ipnet
}

func usableIPs(ifaces []iface) []net.IP {
	var ips []net.IP
	for _, it := range ifaces {
		for _, addr := range it.addrs {
			if ip, _ := usableIPv4(addr); ip != nil {
				ips = append(ips, ip)
			}
		}
	}
	return ips
}

// ipForGateway finds the local address in the same subnet as gwIP.
func ipForGateway(ifaces []iface, gwIP net.IP) net.IP {
	for _, it := range ifaces {
		for _, addr := range it.addrs {
			ip, ipnet := usableIPv4(addr)
			if ip != nil && ipnet.Contains(gwIP) {
				return ip
			}
		}
	}
	return nil
}

func primaryFirst(ips []net.IP, primary net.IP) []net.IP {
	out := make([]net.IP, 0, len(ips))
	out = append(out, primary)
	for _, ip := range ips {
		if !ip.Equal(primary) {
			out = append(out, ip)
		}
	}
	return out
}
