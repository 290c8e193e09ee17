package awsutil

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const DefaultRegion = "us-east-1"

// CredentialSource tells where the credentials used for every AWS call came from
type CredentialSource string

const (
	SourceExplicit     CredentialSource = "explicit"
	SourceEnvironment  CredentialSource = "environment"
	SourceDefaultChain CredentialSource = "default-chain"
)

// Keys is an access key pair. Both halves are needed for it to be usable.
type Keys struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func (k Keys) complete() bool {
	return k.AccessKeyID != "" && k.SecretAccessKey != ""
}

// Identity is the AWS identity the dashboard runs with, resolved once at startup.
//
// Precedence: Explicit keys, then Environment keys, then whatever the SDK default
// chain finds for Profile (shared config, web identity, container or instance role).
type Identity struct {
	Explicit    Keys
	Environment Keys
	Profile     string
	Region      string
}

// Source returns which credential source LoadConfig will use
func (i Identity) Source() CredentialSource {
	switch {
	case i.Explicit.complete():
		return SourceExplicit
	case i.Environment.complete():
		return SourceEnvironment
	default:
		return SourceDefaultChain
	}
}

func (i Identity) region() string {
	if i.Region == "" {
		return DefaultRegion
	}
	return i.Region
}

// LoadConfig returns an AWS config for the given identity. It never contacts AWS:
// missing credentials only show up once a client signs a request.
func LoadConfig(ctx context.Context, identity Identity) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(identity.region()),
	}

	switch identity.Source() {
	case SourceExplicit:
		k := identity.Explicit
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(k.AccessKeyID, k.SecretAccessKey, k.SessionToken)))
	case SourceEnvironment:
		k := identity.Environment
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(k.AccessKeyID, k.SecretAccessKey, k.SessionToken)))
	default:
		if identity.Profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(identity.Profile))
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.Credentials != nil {
		cfg.Credentials = &locateGuard{provider: cfg.Credentials}
	}

	return cfg, nil
}

// locateGuard marks every credential retrieval failure with ErrNoCredentials so callers
// can detect it with errors.Is through the SDK's error wrapping.
type locateGuard struct {
	provider aws.CredentialsProvider
}

func (g *locateGuard) Retrieve(ctx context.Context) (aws.Credentials, error) {
	creds, err := g.provider.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, markNoCredentials(err)
	}
	return creds, nil
}

// Timeouts bounds a single outbound call
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
}

var (
	// ProbeTimeouts is kept short: the probe only checks the identity exists
	ProbeTimeouts = Timeouts{Connect: 1 * time.Second, Read: 2 * time.Second}
	// FetchTimeouts applies to every resource fetcher
	FetchTimeouts = Timeouts{Connect: 3 * time.Second, Read: 10 * time.Second}
)

// NewHTTPClient returns an SDK HTTP client honoring the given timeouts
func NewHTTPClient(t Timeouts) *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(t.Connect + t.Read).
		WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = t.Connect
		}).
		WithTransportOptions(func(tr *http.Transport) {
			tr.TLSHandshakeTimeout = t.Connect
			tr.ResponseHeaderTimeout = t.Read
		})
}

// STSAPI defines the STS operations we use
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// EC2API defines the EC2 operations we use
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

// ELBv2API defines the Elastic Load Balancing v2 operations we use
type ELBv2API interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
}

// Ensure AWS SDK clients implement our interfaces
var _ STSAPI = (*sts.Client)(nil)
var _ EC2API = (*ec2.Client)(nil)
var _ ELBv2API = (*elbv2.Client)(nil)
