package network

import (
	"bytes"
	"errors"
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// ErrAddressSpaceExhausted is returned when the subnets do not fit in the VPC block.
var ErrAddressSpaceExhausted = errors.New("vpc address space exhausted")

// Mask bounds accepted for subnets.
const (
	MinCidrMask = 16
	MaxCidrMask = 28
)

// planSubnets allocates one block per requested mask, in order. Each block
// starts at the first address after the previous block, rounded up to its
// own prefix boundary.
func planSubnets(vpc *net.IPNet, masks []int) ([]*net.IPNet, error) {
	vpcPrefix, bits := vpc.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("only IPv4 VPC blocks are supported, got %s", vpc)
	}

	_, vpcLast := cidr.AddressRange(vpc)
	cursor := vpc.IP.To4()
	planned := make([]*net.IPNet, 0, len(masks))

	for i, mask := range masks {
		if mask < vpcPrefix || mask < MinCidrMask || mask > MaxCidrMask {
			return nil, fmt.Errorf("subnet mask /%d is outside /%d-/%d for %s", mask, max(vpcPrefix, MinCidrMask), MaxCidrMask, vpc)
		}

		block := &net.IPNet{IP: cursor.Mask(net.CIDRMask(mask, 32)), Mask: net.CIDRMask(mask, 32)}
		if !block.IP.Equal(cursor) {
			next, overflow := cidr.NextSubnet(block, mask)
			if overflow {
				return nil, fmt.Errorf("%w: subnet %d (/%d) in %s", ErrAddressSpaceExhausted, i+1, mask, vpc)
			}
			block = next
		}

		_, last := cidr.AddressRange(block)
		if !vpc.Contains(block.IP) || bytes.Compare(last.To4(), vpcLast.To4()) > 0 {
			return nil, fmt.Errorf("%w: subnet %d (/%d) in %s", ErrAddressSpaceExhausted, i+1, mask, vpc)
		}

		planned = append(planned, block)
		cursor = cidr.Inc(last).To4()
		if cursor.Equal(net.IPv4zero) && i < len(masks)-1 {
			return nil, fmt.Errorf("%w: subnet %d in %s", ErrAddressSpaceExhausted, i+2, vpc)
		}
	}

	if err := cidr.VerifyNoOverlap(planned, vpc); err != nil {
		return nil, fmt.Errorf("planned subnets for %s: %w", vpc, err)
	}
	return planned, nil
}
