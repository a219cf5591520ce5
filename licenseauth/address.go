package licenseauth

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/dnscache"
	gonet "github.com/shirou/gopsutil/v4/net"
)

// Resolver names accepted by ResolverByName.
const (
	ResolverHostname  = "hostname"
	ResolverInterface = "interface"
	ResolverNetlink   = "netlink"
	ResolverPublic    = "public"

	// ResolverStaticPrefix selects a fixed address, as in "static:10.0.0.7".
	ResolverStaticPrefix = "static:"
)

const DefaultPublicIPEndpoint = "https://api.ipify.org?format=json"

// AddressResolver finds the IPv4 address a license check is made from.
type AddressResolver interface {
	ResolveIPv4(ctx context.Context) (string, error)
}

type ResolverFunc func(ctx context.Context) (string, error)

func (f ResolverFunc) ResolveIPv4(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticResolver always returns the same address.
type StaticResolver string

func (s StaticResolver) ResolveIPv4(context.Context) (string, error) {
	addr, err := netip.ParseAddr(string(s))
	if err != nil || !addr.Is4() {
		return "", fmt.Errorf("%q is not an IPv4 address", string(s))
	}
	return addr.String(), nil
}

func ResolverByName(name string) (AddressResolver, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if ip, ok := strings.CutPrefix(name, ResolverStaticPrefix); ok {
		if _, err := StaticResolver(ip).ResolveIPv4(context.Background()); err != nil {
			return nil, err
		}
		return StaticResolver(ip), nil
	}
	switch name {
	case "", ResolverHostname:
		return NewHostnameResolver(), nil
	case ResolverInterface:
		return NewInterfaceResolver(), nil
	case ResolverNetlink:
		return NewNetlinkResolver(), nil
	case ResolverPublic:
		return NewPublicResolver(DefaultPublicIPEndpoint), nil
	default:
		return nil, fmt.Errorf("unknown address resolver %q", name)
	}
}

type hostLookuper interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// HostnameResolver resolves the machine's host name and picks the first
// IPv4 address in the answer.
type HostnameResolver struct {
	Hostname func() (string, error)
	Lookup   hostLookuper
}

func NewHostnameResolver() *HostnameResolver {
	return &HostnameResolver{
		Hostname: os.Hostname,
		Lookup:   &dnscache.Resolver{},
	}
}

func (r *HostnameResolver) ResolveIPv4(ctx context.Context) (string, error) {
	name, err := r.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}
	addrs, err := r.Lookup.LookupHost(ctx, name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}
	if ip, ok := firstIPv4(addrs); ok {
		return ip, nil
	}
	return "", ErrNoIPv4Address
}

// InterfaceResolver returns the first IPv4 address bound to an interface
// that is up and is not a loopback.
type InterfaceResolver struct {
	Interfaces func(ctx context.Context) (gonet.InterfaceStatList, error)
}

func NewInterfaceResolver() *InterfaceResolver {
	return &InterfaceResolver{Interfaces: gonet.InterfacesWithContext}
}

func (r *InterfaceResolver) ResolveIPv4(ctx context.Context) (string, error) {
	ifaces, err := r.Interfaces(ctx)
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if !slices.Contains(iface.Flags, "up") || slices.Contains(iface.Flags, "loopback") {
			continue
		}
		for _, a := range iface.Addrs {
			prefix, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			if ip := prefix.Addr(); ip.Is4() && !ip.IsLoopback() {
				return ip.String(), nil
			}
		}
	}
	return "", ErrNoIPv4Address
}

// PublicResolver asks an echo service for the address the internet sees.
type PublicResolver struct {
	Endpoint string
	client   *resty.Client
}

func NewPublicResolver(endpoint string) *PublicResolver {
	return &PublicResolver{
		Endpoint: endpoint,
		client:   resty.New().SetTimeout(5 * time.Second),
	}
}

type publicIPResponse struct {
	IP string `json:"ip"`
}

func (r *PublicResolver) ResolveIPv4(ctx context.Context) (string, error) {
	var out publicIPResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&out).
		ForceContentType("application/json").
		Get(r.Endpoint)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("public address lookup: %s", resp.Status())
	}
	return StaticResolver(out.IP).ResolveIPv4(ctx)
}

func firstIPv4(addrs []string) (string, bool) {
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), true
		}
	}
	return "", false
}
