package data

// NotAvailable replaces any upstream field AWS left out
const NotAvailable = "N/A"

// ErrorID fills the identifying field of a row standing in for a failed query
const ErrorID = "-"

type InstanceRow struct {
	ID       string `json:"id" yaml:"id"`
	State    string `json:"state" yaml:"state"`
	Type     string `json:"type" yaml:"type"`
	PublicIP string `json:"publicIP" yaml:"publicIP"`
}

type NetworkRow struct {
	ID   string `json:"id" yaml:"id"`
	CIDR string `json:"cidr" yaml:"cidr"`
}

type LoadBalancerRow struct {
	Name    string `json:"name" yaml:"name"`
	DNSName string `json:"dnsName" yaml:"dnsName"`
}

type ImageRow struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// AggregateResult is everything one page render shows about the AWS account
type AggregateResult struct {
	Instances     []InstanceRow     `json:"instances" yaml:"instances"`
	Networks      []NetworkRow      `json:"networks" yaml:"networks"`
	LoadBalancers []LoadBalancerRow `json:"loadBalancers" yaml:"loadBalancers"`
	Images        []ImageRow        `json:"images" yaml:"images"`
	DemoMode      bool              `json:"demoMode" yaml:"demoMode"`
}

// OrchestrationStatus describes the pods serving the dashboard. It is display only.
type OrchestrationStatus struct {
	PodCount   int    `json:"podCount" yaml:"podCount"`
	CurrentPod string `json:"currentPod" yaml:"currentPod"`
	Namespace  string `json:"namespace" yaml:"namespace"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CallerIdentity is the STS view of the credentials in use
type CallerIdentity struct {
	Account string
	Arn     string
	UserID  string
}
