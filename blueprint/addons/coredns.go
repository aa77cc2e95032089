package addons

// CoreDnsAddOn installs CoreDNS. Its pods need nodes, so it waits for the
// managed node groups.
type CoreDnsAddOn struct {
	CoreAddOn
}

// NewCoreDnsAddOn returns the CoreDNS add-on pinned to version
// (e.g. "v1.9.3-eksbuild.2"). Empty selects the EKS default.
func NewCoreDnsAddOn(version string) *CoreDnsAddOn {
	return &CoreDnsAddOn{CoreAddOn{AddOnName: "coredns", Version: version, WaitForNodes: true}}
}
