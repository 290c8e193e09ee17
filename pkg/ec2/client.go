package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
)

// Client wraps the EC2 API for easier testing
type Client struct {
	api awsutil.EC2API
}

// NewClient creates a new EC2 client using the fetcher timeouts
func NewClient(cfg aws.Config) *Client {
	return &Client{api: ec2.NewFromConfig(cfg, func(o *ec2.Options) {
		o.HTTPClient = awsutil.NewHTTPClient(awsutil.FetchTimeouts)
	})}
}

// NewClientWithAPI creates a client with a custom API implementation (for testing)
func NewClientWithAPI(api awsutil.EC2API) *Client {
	return &Client{api: api}
}

// DescribeInstances lists every instance visible to the caller (first page only)
func (c *Client) DescribeInstances(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
	output, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances: %w", err)
	}
	return output, nil
}

// DescribeVpcs lists every VPC in the region (first page only)
func (c *Client) DescribeVpcs(ctx context.Context) (*ec2.DescribeVpcsOutput, error) {
	output, err := c.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpcs: %w", err)
	}
	return output, nil
}

// DescribeImages lists the AMIs owned by the calling account
func (c *Client) DescribeImages(ctx context.Context) (*ec2.DescribeImagesOutput, error) {
	output, err := c.api.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"self"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe images: %w", err)
	}
	return output, nil
}
