// Package pairing prints the address a phone should open, as text and as a terminal QR code.
package pairing

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/mdp/qrterminal/v3"
)

// ErrNoLANAddress reports that no non-loopback IPv4 address was found.
var ErrNoLANAddress = errors.New("no LAN address found")

// LocalIP returns the address of the interface used for outbound traffic, falling back to the
// first non-loopback IPv4 interface address. No packets are sent.
func LocalIP() (net.IP, error) {
	if conn, err := net.Dial("udp4", "192.0.2.1:9"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsLoopback() && !addr.IP.IsUnspecified() {
			return addr.IP, nil
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("interface addrs: %w", err)
	}
	if ip := firstLANIPv4(addrs); ip != nil {
		return ip, nil
	}
	return nil, ErrNoLANAddress
}

// firstLANIPv4 picks the first usable IPv4 address.
func firstLANIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return ip
	}
	return nil
}

// URL returns the http URL for listenAddr as seen from the LAN. Wildcard and empty hosts are
// replaced with lanIP.
func URL(listenAddr string, lanIP net.IP) (string, error) {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", fmt.Errorf("listen address %q: %w", listenAddr, err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("listen port %q: %w", port, err)
	}

	ip := net.ParseIP(host)
	if host == "" || (ip != nil && ip.IsUnspecified()) {
		if lanIP == nil {
			return "", ErrNoLANAddress
		}
		host = lanIP.String()
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// Print writes the URL and its QR code to w. The QR code is skipped when qr is false.
func Print(w io.Writer, url string, qr bool) {
	fmt.Fprintf(w, "Open on your phone: %s\n", url)
	if qr {
		qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
	}
}
