package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"github.com/pet2cattle/aws-dashboard/pkg/metrics"
	"github.com/pet2cattle/aws-dashboard/pkg/safecall"
	"golang.org/x/sync/errgroup"
)

// Reasons for serving the demo dataset
const (
	ReasonForced             = "forced"
	ReasonProbe              = "probe"
	ReasonCredentialsMissing = "credentials-missing"
)

type Prober interface {
	Probe(ctx context.Context) bool
}

type ComputeFetcher interface {
	DescribeInstances(ctx context.Context) (*ec2.DescribeInstancesOutput, error)
	DescribeVpcs(ctx context.Context) (*ec2.DescribeVpcsOutput, error)
	DescribeImages(ctx context.Context) (*ec2.DescribeImagesOutput, error)
}

type LoadBalancerFetcher interface {
	DescribeLoadBalancers(ctx context.Context) (*elbv2.DescribeLoadBalancersOutput, error)
}

type Options struct {
	// ForceDemo serves the demo dataset without contacting AWS
	ForceDemo bool
	Logger    *slog.Logger
}

// Aggregator builds the AggregateResult for one page render
type Aggregator struct {
	prober    Prober
	compute   ComputeFetcher
	balancers LoadBalancerFetcher
	forceDemo bool
	logger    *slog.Logger
}

func NewAggregator(prober Prober, compute ComputeFetcher, balancers LoadBalancerFetcher, opts Options) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		prober:    prober,
		compute:   compute,
		balancers: balancers,
		forceDemo: opts.ForceDemo,
		logger:    logger,
	}
}

// liveOutcomes holds the four fetcher results of a live render
type liveOutcomes struct {
	instances     safecall.Outcome[*ec2.DescribeInstancesOutput]
	networks      safecall.Outcome[*ec2.DescribeVpcsOutput]
	loadBalancers safecall.Outcome[*elbv2.DescribeLoadBalancersOutput]
	images        safecall.Outcome[*ec2.DescribeImagesOutput]
}

func (o *liveOutcomes) errors() []error {
	return []error{o.instances.Err, o.networks.Err, o.loadBalancers.Err, o.images.Err}
}

// credentialsMissing returns the first failure meaning credentials could not be located
func (o *liveOutcomes) credentialsMissing() error {
	for _, err := range o.errors() {
		if awsutil.IsCredentialsMissing(err) {
			return err
		}
	}
	return nil
}

func (o *liveOutcomes) normalize() data.AggregateResult {
	return data.AggregateResult{
		Instances:     normalizeInstances(o.instances),
		Networks:      normalizeNetworks(o.networks),
		LoadBalancers: normalizeLoadBalancers(o.loadBalancers),
		Images:        normalizeImages(o.images),
		DemoMode:      false,
	}
}

// Aggregate probes the credentials, runs the four fetchers and normalizes their
// results, falling back to the demo dataset when AWS cannot be used. The only
// error it returns is an unrecognized failure from a fetcher.
func (a *Aggregator) Aggregate(ctx context.Context) (data.AggregateResult, error) {
	if a.forceDemo {
		return a.demo(ReasonForced, nil), nil
	}

	// Check the credentials before touching any resource API
	ok := a.prober.Probe(ctx)
	metrics.RecordProbe(ok)
	if !ok {
		return a.demo(ReasonProbe, nil), nil
	}

	// Fetch all four collections
	outcomes, err := a.fetchAll(ctx)
	if err != nil {
		return data.AggregateResult{}, err
	}

	// credentials can resolve lazily, so a fetcher may still find none after the probe
	if err := outcomes.credentialsMissing(); err != nil {
		return a.demo(ReasonCredentialsMissing, err), nil
	}

	metrics.RecordLive()
	return outcomes.normalize(), nil
}

func (a *Aggregator) demo(reason string, cause error) data.AggregateResult {
	if cause != nil {
		a.logger.Warn("serving demo data", "reason", reason, "error", cause)
	} else {
		a.logger.Info("serving demo data", "reason", reason)
	}
	metrics.RecordDemo(reason)
	return data.DemoData()
}

// fetchAll runs every fetcher to completion; a failure in one never stops the others
func (a *Aggregator) fetchAll(ctx context.Context) (*liveOutcomes, error) {
	outcomes := &liveOutcomes{}
	var g errgroup.Group

	g.Go(func() (err error) {
		outcomes.instances, err = runFetcher(ctx, a.logger, "instances", a.compute.DescribeInstances, &ec2.DescribeInstancesOutput{})
		return err
	})
	g.Go(func() (err error) {
		outcomes.networks, err = runFetcher(ctx, a.logger, "networks", a.compute.DescribeVpcs, &ec2.DescribeVpcsOutput{})
		return err
	})
	g.Go(func() (err error) {
		outcomes.loadBalancers, err = runFetcher(ctx, a.logger, "load-balancers", a.balancers.DescribeLoadBalancers, &elbv2.DescribeLoadBalancersOutput{})
		return err
	})
	g.Go(func() (err error) {
		outcomes.images, err = runFetcher(ctx, a.logger, "images", a.compute.DescribeImages, &ec2.DescribeImagesOutput{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runFetcher runs one fetcher through safecall, records its outcome in logs and metrics,
// and recovers a panic inside the fetcher goroutine into an error so it fails the
// request instead of the process.
func runFetcher[T any](ctx context.Context, logger *slog.Logger, resource string, op func(context.Context) (T, error), fallback T) (outcome safecall.Outcome[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s fetcher panicked: %v", resource, r)
			logger.Error("fetch panicked", "resource", resource, "panic", r)
		}
	}()

	// Call the fetcher and time it
	start := time.Now()
	outcome, err = safecall.Call(ctx, op, fallback)
	elapsed := time.Since(start)

	// Record by outcome kind
	switch {
	case err != nil:
		metrics.RecordFetch(resource, string(awsutil.KindUnknown), elapsed)
		logger.Error("fetch failed unexpectedly", "resource", resource, "error", err)
	case outcome.Failed():
		kind := awsutil.Classify(outcome.Err)
		metrics.RecordFetch(resource, string(kind), elapsed)
		logger.Warn("fetch failed", "resource", resource, "kind", string(kind), "error", outcome.Err)
	default:
		metrics.RecordFetch(resource, "ok", elapsed)
		logger.Debug("fetch complete", "resource", resource, "elapsed", elapsed)
	}

	return outcome, err
}
