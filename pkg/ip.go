package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1:\d{1,5}`)
)

func IPIsLocal(ipAddr string) bool {
	// used in local development ?
	if strings.HasPrefix(ipAddr, "127.0.0.1:") || strings.HasPrefix(ipAddr, "[::1]:") {
		return true
	}

	// user within docker container ?
	return localDockerIpRegex.MatchString(ipAddr)
}

// ClientIPReader resolves the client IP of a request. X-Real-Ip and X-Forwarded-For
// are only honoured when the direct peer is one of the trusted proxies.
// A nil or zero reader trusts no proxy.
type ClientIPReader struct {
	trustedProxies []*net.IPNet
}

// NewClientIPReader accepts single IPs ("10.0.0.1") and CIDR ranges ("172.16.0.0/12").
func NewClientIPReader(trustedProxies []string) (*ClientIPReader, error) {
	reader := &ClientIPReader{}
	for _, proxy := range trustedProxies {
		proxy = strings.TrimSpace(proxy)
		if !strings.Contains(proxy, "/") {
			ip := net.ParseIP(proxy)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %s is not a valid ip", proxy)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip = ip.To4()
				bits = 8 * net.IPv4len
			}
			reader.trustedProxies = append(reader.trustedProxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %s: %w", proxy, err)
		}
		reader.trustedProxies = append(reader.trustedProxies, ipNet)
	}
	return reader, nil
}

// ReadUserIP returns the client IP, taking the proxy headers into account only
// for requests coming through a trusted proxy.
// Local (development / docker) addresses are reported as "localhost".
func (c *ClientIPReader) ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.RemoteAddr
	if c.isTrusted(hostOnly(r.RemoteAddr)) {
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
			ipAddr = realIP
		} else if forwarded := c.forwardedClient(r.Header.Get("X-Forwarded-For")); forwarded != "" {
			ipAddr = forwarded
		}
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	ipAddr = hostOnly(ipAddr)
	if ip := net.ParseIP(ipAddr); ip == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}

// forwardedClient walks the X-Forwarded-For chain from the right and returns the
// first hop that is not a trusted proxy. Entries left of it may be forged.
func (c *ClientIPReader) forwardedClient(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}

	hops := strings.Split(header, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !c.isTrusted(hostOnly(hop)) || i == 0 {
			return hop
		}
	}
	return ""
}

func (c *ClientIPReader) isTrusted(host string) bool {
	if c == nil || len(c.trustedProxies) == 0 {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, ipNet := range c.trustedProxies {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
