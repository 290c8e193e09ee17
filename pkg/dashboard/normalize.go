package dashboard

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/smithy-go"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"github.com/pet2cattle/aws-dashboard/pkg/safecall"
)

func orNA(value *string) string {
	if value == nil || *value == "" {
		return data.NotAvailable
	}
	return *value
}

func stringOrNA(value string) string {
	if value == "" {
		return data.NotAvailable
	}
	return value
}

// failureMessage is the text shown in place of a failed collection: the SDK's own
// operation error when there is one, without the fetcher's wrapping
func failureMessage(err error) string {
	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	return err.Error()
}

func normalizeInstances(outcome safecall.Outcome[*ec2.DescribeInstancesOutput]) []data.InstanceRow {
	if outcome.Failed() {
		return []data.InstanceRow{{
			ID:       data.ErrorID,
			State:    failureMessage(outcome.Err),
			Type:     data.ErrorID,
			PublicIP: data.ErrorID,
		}}
	}

	rows := []data.InstanceRow{}
	if outcome.Value == nil {
		return rows
	}
	for _, reservation := range outcome.Value.Reservations {
		for _, instance := range reservation.Instances {
			state := data.NotAvailable
			if instance.State != nil {
				state = stringOrNA(string(instance.State.Name))
			}
			rows = append(rows, data.InstanceRow{
				ID:       orNA(instance.InstanceId),
				State:    state,
				Type:     stringOrNA(string(instance.InstanceType)),
				PublicIP: orNA(instance.PublicIpAddress),
			})
		}
	}
	return rows
}

func normalizeNetworks(outcome safecall.Outcome[*ec2.DescribeVpcsOutput]) []data.NetworkRow {
	if outcome.Failed() {
		return []data.NetworkRow{{ID: data.ErrorID, CIDR: failureMessage(outcome.Err)}}
	}

	rows := []data.NetworkRow{}
	if outcome.Value == nil {
		return rows
	}
	for _, vpc := range outcome.Value.Vpcs {
		rows = append(rows, data.NetworkRow{
			ID:   orNA(vpc.VpcId),
			CIDR: orNA(vpc.CidrBlock),
		})
	}
	return rows
}

func normalizeLoadBalancers(outcome safecall.Outcome[*elbv2.DescribeLoadBalancersOutput]) []data.LoadBalancerRow {
	if outcome.Failed() {
		return []data.LoadBalancerRow{{Name: data.ErrorID, DNSName: failureMessage(outcome.Err)}}
	}

	rows := []data.LoadBalancerRow{}
	if outcome.Value == nil {
		return rows
	}
	for _, lb := range outcome.Value.LoadBalancers {
		rows = append(rows, data.LoadBalancerRow{
			Name:    orNA(lb.LoadBalancerName),
			DNSName: orNA(lb.DNSName),
		})
	}
	return rows
}

func normalizeImages(outcome safecall.Outcome[*ec2.DescribeImagesOutput]) []data.ImageRow {
	if outcome.Failed() {
		return []data.ImageRow{{ID: data.ErrorID, Name: failureMessage(outcome.Err)}}
	}

	rows := []data.ImageRow{}
	if outcome.Value == nil {
		return rows
	}
	for _, image := range outcome.Value.Images {
		rows = append(rows, data.ImageRow{
			ID:   orNA(image.ImageId),
			Name: orNA(image.Name),
		})
	}
	return rows
}
