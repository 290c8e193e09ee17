package data

// Demo rows use documentation-only values (RFC 5737 addresses, fake ids)
var demoDataset = AggregateResult{
	Instances: []InstanceRow{
		{ID: "i-0demo123", State: "running", Type: "t3.micro", PublicIP: "203.0.113.10"},
	},
	Networks: []NetworkRow{
		{ID: "vpc-0demo123", CIDR: "10.0.0.0/16"},
	},
	LoadBalancers: []LoadBalancerRow{
		{Name: "alb-demo", DNSName: "alb-demo-123.elb.amazonaws.com"},
	},
	Images: []ImageRow{
		{ID: "ami-0demo123", Name: "demo-ami"},
	},
	DemoMode: true,
}

// DemoData returns the dataset shown whenever live AWS access is unusable.
// Every call returns the same values in freshly allocated slices.
func DemoData() AggregateResult {
	return AggregateResult{
		Instances:     append([]InstanceRow(nil), demoDataset.Instances...),
		Networks:      append([]NetworkRow(nil), demoDataset.Networks...),
		LoadBalancers: append([]LoadBalancerRow(nil), demoDataset.LoadBalancers...),
		Images:        append([]ImageRow(nil), demoDataset.Images...),
		DemoMode:      demoDataset.DemoMode,
	}
}
