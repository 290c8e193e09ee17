package elb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
)

// Client wraps the Elastic Load Balancing v2 API (ALB/NLB) for easier testing
type Client struct {
	api awsutil.ELBv2API
}

// NewClient creates a new ELBv2 client using the fetcher timeouts
func NewClient(cfg aws.Config) *Client {
	return &Client{api: elbv2.NewFromConfig(cfg, func(o *elbv2.Options) {
		o.HTTPClient = awsutil.NewHTTPClient(awsutil.FetchTimeouts)
	})}
}

// NewClientWithAPI creates a client with a custom API implementation (for testing)
func NewClientWithAPI(api awsutil.ELBv2API) *Client {
	return &Client{api: api}
}

// DescribeLoadBalancers lists application and network load balancers (first page only)
func (c *Client) DescribeLoadBalancers(ctx context.Context) (*elbv2.DescribeLoadBalancersOutput, error) {
	output, err := c.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe load balancers: %w", err)
	}
	return output, nil
}
