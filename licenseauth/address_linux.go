package licenseauth

import (
	"context"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// NetlinkResolver lists the kernel's IPv4 addresses and returns the first
// one with global scope.
type NetlinkResolver struct {
	List func() ([]netlink.Addr, error)
}

func NewNetlinkResolver() *NetlinkResolver {
	return &NetlinkResolver{
		List: func() ([]netlink.Addr, error) {
			return netlink.AddrList(nil, netlink.FAMILY_V4)
		},
	}
}

func (r *NetlinkResolver) ResolveIPv4(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	addrs, err := r.List()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if a.IPNet == nil || a.Scope != unix.RT_SCOPE_UNIVERSE {
			continue
		}
		if v4 := a.IP.To4(); v4 != nil && !v4.IsLoopback() {
			return v4.String(), nil
		}
	}
	return "", ErrNoIPv4Address
}
