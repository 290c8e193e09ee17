package sts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
)

// Prober checks whether the configured identity can authenticate at all
type Prober struct {
	api     awsutil.STSAPI
	timeout time.Duration
	logger  *slog.Logger
}

// NewProber creates a prober with short timeouts and a single attempt
func NewProber(cfg aws.Config, logger *slog.Logger) *Prober {
	api := sts.NewFromConfig(cfg, func(o *sts.Options) {
		o.Retryer = aws.NopRetryer{}
		o.HTTPClient = awsutil.NewHTTPClient(awsutil.ProbeTimeouts)
	})
	return NewProberWithAPI(api, logger)
}

// NewProberWithAPI creates a prober with a custom API implementation (for testing)
func NewProberWithAPI(api awsutil.STSAPI, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		api:     api,
		timeout: awsutil.ProbeTimeouts.Connect + awsutil.ProbeTimeouts.Read,
		logger:  logger,
	}
}

// Probe returns true only if GetCallerIdentity succeeds
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err == nil {
		return true
	}

	kind := awsutil.Classify(err)
	if kind == awsutil.KindUnknown {
		p.logger.Error("credential probe failed unexpectedly", "error", err)
	} else {
		p.logger.Info("credential probe failed", "kind", string(kind), "error", err)
	}
	return false
}

// CallerIdentity returns the account, ARN and user id behind the credentials
func (p *Prober) CallerIdentity(ctx context.Context) (*data.CallerIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	return &data.CallerIdentity{
		Account: aws.ToString(result.Account),
		Arn:     aws.ToString(result.Arn),
		UserID:  aws.ToString(result.UserId),
	}, nil
}
