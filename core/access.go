package core

import (
	"fmt"
	"net"
	"strings"
)

// AccessList decides which client addresses may use the kiosk API.
// A nil AccessList admits everyone.
type AccessList struct {
	allow []*net.IPNet
	deny  []*net.IPNet
}

// NewAccessList parses allow and deny entries, each a CIDR or a bare IP.
// It returns nil when both lists are empty.
func NewAccessList(allow, deny []string) (*AccessList, error) {
	a := &AccessList{}

	var err error
	if a.allow, err = parseNets(allow); err != nil {
		return nil, fmt.Errorf("invalid allow list: %w", err)
	}
	if a.deny, err = parseNets(deny); err != nil {
		return nil, fmt.Errorf("invalid deny list: %w", err)
	}

	if len(a.allow) == 0 && len(a.deny) == 0 {
		return nil, nil
	}
	return a, nil
}

// ParseAccessList splits comma-separated allow and deny strings, as read
// from API_ALLOW and API_DENY.
func ParseAccessList(allow, deny string) (*AccessList, error) {
	return NewAccessList(splitList(allow), splitList(deny))
}

// Allows reports whether ip may connect. Deny entries win over allow entries;
// an empty allow list admits everything not denied.
func (a *AccessList) Allows(ip net.IP) bool {
	if a == nil {
		return true
	}
	if ip == nil {
		return false
	}

	for _, n := range a.deny {
		if n.Contains(ip) {
			return false
		}
	}
	if len(a.allow) == 0 {
		return true
	}
	for _, n := range a.allow {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// AllowsHost is Allows for a textual address such as gin's ClientIP.
func (a *AccessList) AllowsHost(host string) bool {
	if a == nil {
		return true
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return a.Allows(net.ParseIP(strings.Trim(host, "[]")))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseNets(list []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := parseCIDROrIP(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseCIDROrIP(value string) (*net.IPNet, error) {
	if strings.Contains(value, "/") {
		_, n, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q", value)
		}
		return n, nil
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP %q", value)
	}
	if ip4 := ip.To4(); ip4 != nil {
		return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}
