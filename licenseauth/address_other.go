//go:build !linux

package licenseauth

import (
	"context"
	"errors"
)

var errNetlinkUnsupported = errors.New("netlink address listing is only supported on linux")

type NetlinkResolver struct{}

func NewNetlinkResolver() *NetlinkResolver {
	return &NetlinkResolver{}
}

func (r *NetlinkResolver) ResolveIPv4(context.Context) (string, error) {
	return "", errNetlinkUnsupported
}
