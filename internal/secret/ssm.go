// Package secret reads the generation API key from AWS Systems Manager
// Parameter Store.
package secret

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/mandalnilabja/scenesculpt/internal/provider"
)

// ParameterGetter is the subset of *ssm.Client used here.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMKeySource fetches a SecureString parameter on every call.
type SSMKeySource struct {
	Client ParameterGetter
	Name   string
	Logger *slog.Logger
}

var _ provider.KeySource = (*SSMKeySource)(nil)

// NewSSMClient builds an SSM client from the default AWS credential chain.
// An empty region leaves the SDK's own resolution in place.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// APIKey implements provider.KeySource.
func (s *SSMKeySource) APIKey(ctx context.Context) (string, error) {
	if s.Logger != nil {
		s.Logger.Debug("fetching api key from parameter store", "parameter", s.Name)
	}

	out, err := s.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.Name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("parameter %s: %w", s.Name, provider.ErrNoAPIKey)
		}
		return "", fmt.Errorf("get parameter %s: %w", s.Name, err)
	}
	if out.Parameter == nil {
		return "", provider.ErrNoAPIKey
	}

	key := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	if key == "" {
		return "", provider.ErrNoAPIKey
	}
	return key, nil
}
