package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// DefaultRegion is used when neither flags nor the profile name a region.
const DefaultRegion = "us-east-1"

type Error string

const (
	ErrNoCredentials      = Error("no AWS credentials found")
	ErrExpiredCredentials = Error("AWS credentials have expired")
	ErrNoConnection       = Error("no connection to AWS")
	ErrInvalidProfile     = Error("invalid AWS profile")
	ErrNoProfiles         = Error("no AWS profiles found")
	ErrNoSuchKey          = Error("no such object")
)

func (e Error) Error() string {
	return string(e)
}

// Connection represents an AWS session scoped to the span export bucket.
type Connection interface {
	Config() *ClientConfig
	ConnectionOK() bool
	CheckConnectivity(ctx context.Context) bool
	SwitchProfile(profile string) error
	ActiveProfile() string
	ActiveRegion() string
	AccountID() string
	ProfileNames() []string
	S3() *s3.Client
	STS() *sts.Client
}

type ClientConfig struct {
	Profile string
	Region  string
	// Endpoint overrides the S3 endpoint, e.g. for S3 compatible stores.
	Endpoint string
	Timeout  time.Duration
}

type serviceClients struct {
	s3Client  *s3.Client
	stsClient *sts.Client
	createdAt time.Time
}

type APIClient struct {
	config    *ClientConfig
	settings  ProfileSettings
	clients   map[string]*serviceClients
	accountID string
	connOK    bool
	mx        sync.RWMutex
}

// NewAPIClient returns a client. Settings may be nil, in which case
// credentials come from the environment only.
func NewAPIClient(settings ProfileSettings, cfg *ClientConfig) (*APIClient, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	return &APIClient{
		config:   cfg,
		settings: settings,
		clients:  make(map[string]*serviceClients),
	}, nil
}

// Config returns a copy of the client configuration.
func (c *APIClient) Config() *ClientConfig {
	c.mx.RLock()
	defer c.mx.RUnlock()

	cfg := *c.config
	return &cfg
}

// ConnectionOK returns whether the last connectivity check succeeded.
func (c *APIClient) ConnectionOK() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.connOK
}

// CheckConnectivity verifies connectivity to AWS by calling STS GetCallerIdentity.
// It caches the account ID on success.
func (c *APIClient) CheckConnectivity(ctx context.Context) bool {
	if t := c.Config().Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	var (
		result *sts.GetCallerIdentityOutput
		err    error
	)
	if client := c.STS(); client == nil {
		err = ErrNoConnection
	} else {
		result, err = client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	c.connOK = err == nil
	if err == nil {
		c.accountID = aws.ToString(result.Account)
	}

	return c.connOK
}

// SwitchProfile moves the client onto another profile. Cached clients and
// the account of the previous profile are dropped.
func (c *APIClient) SwitchProfile(profile string) error {
	if c.settings == nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, profile)
	}
	if err := c.settings.SetActiveProfile(profile, ""); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, profile)
	}
	region, err := c.settings.CurrentRegion()
	if err != nil {
		return err
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	delete(c.clients, c.config.Profile)
	c.config.Profile = profile
	if region != "" {
		c.config.Region = region
	}
	c.connOK, c.accountID = false, ""

	return nil
}

// ActiveProfile returns the currently active AWS profile.
func (c *APIClient) ActiveProfile() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.config.Profile
}

// ActiveRegion returns the currently active AWS region.
func (c *APIClient) ActiveRegion() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.config.Region
}

// AccountID returns the cached AWS account ID.
func (c *APIClient) AccountID() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.accountID
}

// ProfileNames returns all available profile names, sorted.
func (c *APIClient) ProfileNames() []string {
	if c.settings == nil {
		return nil
	}
	names, err := c.settings.ProfileNames()
	if err != nil {
		return nil
	}
	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)

	return result
}

// S3 returns an S3 client for the active profile.
func (c *APIClient) S3() *s3.Client {
	clients, err := c.getClients()
	if err != nil {
		return nil
	}
	return clients.s3Client
}

// STS returns an STS client for the active profile.
func (c *APIClient) STS() *sts.Client {
	clients, err := c.getClients()
	if err != nil {
		return nil
	}
	return clients.stsClient
}

// getClients retrieves or creates the service clients of the active profile.
func (c *APIClient) getClients() (*serviceClients, error) {
	c.mx.RLock()
	if clients, ok := c.clients[c.config.Profile]; ok {
		c.mx.RUnlock()
		return clients, nil
	}
	c.mx.RUnlock()

	c.mx.Lock()
	defer c.mx.Unlock()

	// Double-check after acquiring write lock
	if clients, ok := c.clients[c.config.Profile]; ok {
		return clients, nil
	}
	clients, err := c.createClients(*c.config)
	if err != nil {
		return nil, err
	}
	c.clients[c.config.Profile] = clients

	return clients, nil
}

func (c *APIClient) createClients(cfg ClientConfig) (*serviceClients, error) {
	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, WrapAWSError(err, "load AWS config")
	}

	return &serviceClients{
		s3Client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		}),
		stsClient: sts.NewFromConfig(awsCfg),
		createdAt: time.Now(),
	}, nil
}

// WrapAWSError wraps AWS SDK errors with additional context.
func WrapAWSError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException":
			return fmt.Errorf("access denied for %s: %w", operation, err)
		case "ExpiredToken", "ExpiredTokenException":
			return fmt.Errorf("%w: %s", ErrExpiredCredentials, operation)
		case "ThrottlingException", "SlowDown":
			return fmt.Errorf("rate limited during %s: %w", operation, err)
		case "InvalidClientTokenId", "InvalidAccessKeyId":
			return fmt.Errorf("%w: %s", ErrNoCredentials, operation)
		case "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("%w: %s: %s", ErrNoSuchKey, operation, apiErr.ErrorMessage())
		default:
			return fmt.Errorf("%s failed: %s (%s)", operation, apiErr.ErrorMessage(), apiErr.ErrorCode())
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
