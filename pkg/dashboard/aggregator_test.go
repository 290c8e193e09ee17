package dashboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	awssts "github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"github.com/pet2cattle/aws-dashboard/pkg/ec2"
	"github.com/pet2cattle/aws-dashboard/pkg/elb"
	"github.com/pet2cattle/aws-dashboard/pkg/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSTSAPI is a mock implementation of STSAPI
type MockSTSAPI struct {
	mock.Mock
}

func (m *MockSTSAPI) GetCallerIdentity(ctx context.Context, params *awssts.GetCallerIdentityInput, optFns ...func(*awssts.Options)) (*awssts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awssts.GetCallerIdentityOutput), args.Error(1)
}

// MockEC2API is a mock implementation of EC2API
type MockEC2API struct {
	mock.Mock
}

func (m *MockEC2API) DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsec2.DescribeInstancesOutput), args.Error(1)
}

func (m *MockEC2API) DescribeVpcs(ctx context.Context, params *awsec2.DescribeVpcsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeVpcsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsec2.DescribeVpcsOutput), args.Error(1)
}

func (m *MockEC2API) DescribeImages(ctx context.Context, params *awsec2.DescribeImagesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeImagesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*awsec2.DescribeImagesOutput), args.Error(1)
}

// MockELBv2API is a mock implementation of ELBv2API
type MockELBv2API struct {
	mock.Mock
}

func (m *MockELBv2API) DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elbv2.DescribeLoadBalancersOutput), args.Error(1)
}

type fixture struct {
	sts *MockSTSAPI
	ec2 *MockEC2API
	elb *MockELBv2API
}

func newFixture() *fixture {
	return &fixture{sts: new(MockSTSAPI), ec2: new(MockEC2API), elb: new(MockELBv2API)}
}

func (f *fixture) aggregator(opts Options) *Aggregator {
	return NewAggregator(
		sts.NewProberWithAPI(f.sts, nil),
		ec2.NewClientWithAPI(f.ec2),
		elb.NewClientWithAPI(f.elb),
		opts,
	)
}

func (f *fixture) probeSucceeds() {
	f.sts.On("GetCallerIdentity", mock.Anything, mock.Anything).Return(&awssts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
	}, nil)
}

func (f *fixture) assertNoFetch(t *testing.T) {
	f.ec2.AssertNotCalled(t, "DescribeInstances", mock.Anything, mock.Anything)
	f.ec2.AssertNotCalled(t, "DescribeVpcs", mock.Anything, mock.Anything)
	f.ec2.AssertNotCalled(t, "DescribeImages", mock.Anything, mock.Anything)
	f.elb.AssertNotCalled(t, "DescribeLoadBalancers", mock.Anything, mock.Anything)
}

func (f *fixture) assertEachFetchedOnce(t *testing.T) {
	f.ec2.AssertNumberOfCalls(t, "DescribeInstances", 1)
	f.ec2.AssertNumberOfCalls(t, "DescribeVpcs", 1)
	f.ec2.AssertNumberOfCalls(t, "DescribeImages", 1)
	f.elb.AssertNumberOfCalls(t, "DescribeLoadBalancers", 1)
}

var (
	liveInstances = &awsec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{
			{Instances: []ec2types.Instance{
				{
					InstanceId:      aws.String("i-0abc"),
					State:           &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
					InstanceType:    ec2types.InstanceTypeT3Small,
					PublicIpAddress: aws.String("198.51.100.7"),
				},
			}},
		},
	}
	liveVpcs = &awsec2.DescribeVpcsOutput{
		Vpcs: []ec2types.Vpc{{VpcId: aws.String("vpc-0abc"), CidrBlock: aws.String("172.31.0.0/16")}},
	}
	liveLoadBalancers = &elbv2.DescribeLoadBalancersOutput{
		LoadBalancers: []elbv2types.LoadBalancer{
			{LoadBalancerName: aws.String("web"), DNSName: aws.String("web-42.us-east-1.elb.amazonaws.com")},
		},
	}
	liveImages = &awsec2.DescribeImagesOutput{
		Images: []ec2types.Image{{ImageId: aws.String("ami-0abc"), Name: aws.String("golden")}},
	}
)

func noCredentialsError(operation string) error {
	return &smithy.OperationError{
		ServiceID:     "EC2",
		OperationName: operation,
		Err:           fmt.Errorf("failed to sign request: %w", awsutil.ErrNoCredentials),
	}
}

func TestAggregateProbeFailsServesDemoWithoutFetching(t *testing.T) {
	f := newFixture()
	f.sts.On("GetCallerIdentity", mock.Anything, mock.Anything).Return(nil, awsutil.ErrNoCredentials)

	result, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.DemoData(), result)
	assert.Equal(t, []data.InstanceRow{{ID: "i-0demo123", State: "running", Type: "t3.micro", PublicIP: "203.0.113.10"}}, result.Instances)
	assert.True(t, result.DemoMode)
	f.sts.AssertNumberOfCalls(t, "GetCallerIdentity", 1)
	f.assertNoFetch(t)
}

func TestAggregateForcedDemoSkipsProbe(t *testing.T) {
	f := newFixture()

	result, err := f.aggregator(Options{ForceDemo: true}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.DemoData(), result)
	f.sts.AssertNotCalled(t, "GetCallerIdentity", mock.Anything, mock.Anything)
	f.assertNoFetch(t)
}

func TestAggregateLateCredentialFallback(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(nil, noCredentialsError("DescribeInstances"))
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(nil, noCredentialsError("DescribeVpcs"))
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(nil, noCredentialsError("DescribeImages"))
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(nil, errors.New("get identity: get credentials: failed to refresh cached credentials"))

	result, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.DemoData(), result)
	f.assertEachFetchedOnce(t)
}

func TestAggregateSingleCredentialFailureDiscardsLiveRows(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(liveInstances, nil)
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(liveVpcs, nil)
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(nil, noCredentialsError("DescribeImages"))
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(liveLoadBalancers, nil)

	result, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.DemoData(), result)
}

func TestAggregateOneFetcherDenied(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	denied := &smithy.OperationError{
		ServiceID:     "EC2",
		OperationName: "DescribeVpcs",
		Err:           &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "You are not authorized to perform this operation."},
	}
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(liveInstances, nil)
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(nil, denied)
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(liveImages, nil)
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(liveLoadBalancers, nil)

	result, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.False(t, result.DemoMode)

	require.Len(t, result.Networks, 1)
	assert.Equal(t, "-", result.Networks[0].ID)
	assert.Contains(t, result.Networks[0].CIDR, "UnauthorizedOperation")
	assert.Contains(t, result.Networks[0].CIDR, "You are not authorized to perform this operation.")

	assert.Equal(t, []data.InstanceRow{{ID: "i-0abc", State: "running", Type: "t3.small", PublicIP: "198.51.100.7"}}, result.Instances)
	assert.Equal(t, []data.LoadBalancerRow{{Name: "web", DNSName: "web-42.us-east-1.elb.amazonaws.com"}}, result.LoadBalancers)
	assert.Equal(t, []data.ImageRow{{ID: "ami-0abc", Name: "golden"}}, result.Images)
	f.assertEachFetchedOnce(t)
}

func TestAggregateEmptyAccount(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(&awsec2.DescribeInstancesOutput{}, nil)
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(&awsec2.DescribeVpcsOutput{}, nil)
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(&awsec2.DescribeImagesOutput{}, nil)
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(&elbv2.DescribeLoadBalancersOutput{}, nil)

	result, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.AggregateResult{
		Instances:     []data.InstanceRow{},
		Networks:      []data.NetworkRow{},
		LoadBalancers: []data.LoadBalancerRow{},
		Images:        []data.ImageRow{},
		DemoMode:      false,
	}, result)
}

func TestAggregateIsIdempotent(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(liveInstances, nil)
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(liveVpcs, nil)
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(liveImages, nil)
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(liveLoadBalancers, nil)

	aggregator := f.aggregator(Options{})
	first, err := aggregator.Aggregate(context.Background())
	require.NoError(t, err)
	second, err := aggregator.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateUnrecognizedErrorPropagates(t *testing.T) {
	f := newFixture()
	f.probeSucceeds()
	unexpected := errors.New("unexpected response shape")
	f.ec2.On("DescribeInstances", mock.Anything, mock.Anything).Return(liveInstances, nil)
	f.ec2.On("DescribeVpcs", mock.Anything, mock.Anything).Return(liveVpcs, nil)
	f.ec2.On("DescribeImages", mock.Anything, mock.Anything).Return(nil, unexpected)
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(liveLoadBalancers, nil)

	_, err := f.aggregator(Options{}).Aggregate(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, unexpected)
	f.assertEachFetchedOnce(t)
}

type panickingCompute struct{}

func (panickingCompute) DescribeInstances(ctx context.Context) (*awsec2.DescribeInstancesOutput, error) {
	panic("nil map write")
}

func (panickingCompute) DescribeVpcs(ctx context.Context) (*awsec2.DescribeVpcsOutput, error) {
	return &awsec2.DescribeVpcsOutput{}, nil
}

func (panickingCompute) DescribeImages(ctx context.Context) (*awsec2.DescribeImagesOutput, error) {
	return &awsec2.DescribeImagesOutput{}, nil
}

type alwaysProbe bool

func (p alwaysProbe) Probe(ctx context.Context) bool { return bool(p) }

func TestAggregateFetcherPanicFailsRequest(t *testing.T) {
	f := newFixture()
	f.elb.On("DescribeLoadBalancers", mock.Anything, mock.Anything).Return(&elbv2.DescribeLoadBalancersOutput{}, nil)

	aggregator := NewAggregator(alwaysProbe(true), panickingCompute{}, elb.NewClientWithAPI(f.elb), Options{})
	_, err := aggregator.Aggregate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "instances fetcher panicked")
}

func TestAggregateWithoutCredentialsUsesRealClients(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	for _, key := range []string{
		"AWS_PROFILE", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_WEB_IDENTITY_TOKEN_FILE", "AWS_ROLE_ARN",
		"AWS_CONTAINER_CREDENTIALS_RELATIVE_URI", "AWS_CONTAINER_CREDENTIALS_FULL_URI",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := awsutil.LoadConfig(context.Background(), awsutil.Identity{Region: "us-east-1"})
	require.NoError(t, err)

	// the probe is bypassed so the fetchers are the ones finding no credentials
	aggregator := NewAggregator(alwaysProbe(true), ec2.NewClient(cfg), elb.NewClient(cfg), Options{})
	result, err := aggregator.Aggregate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data.DemoData(), result)
}
