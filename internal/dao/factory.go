package dao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spanlens/spanlens/internal/aws"
	"github.com/spanlens/spanlens/internal/config/data"
	"go.uber.org/zap"
)

// Factory owns the source built from the configuration and whatever
// it holds open.
type Factory struct {
	source  Source
	kind    string
	conn    aws.Connection
	s3      *S3Source
	closers []io.Closer
	log     *zap.Logger
}

// SourceFor builds the source named by the configuration. The timeout
// bounds single requests; a zero timeout leaves them unbounded.
func SourceFor(ctx context.Context, cfg data.Source, timeout time.Duration, log *zap.Logger) (*Factory, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := Factory{kind: cfg.Kind, log: log}
	var err error
	switch cfg.Kind {
	case data.SourceGraphQL:
		f.source = NewGraphQLSource(cfg.Endpoint,
			WithToken(cfg.Token()),
			WithHTTPClient(&http.Client{Timeout: timeout}),
			WithLogger(log),
		)
	case data.SourceS3:
		err = f.openS3(ctx, cfg, timeout)
	case data.SourceSQLite:
		err = f.openSQLite(cfg)
	default:
		err = fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	ttl, err := cfg.CacheDuration()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if ttl > 0 {
		f.source = NewCachedSource(f.source, ttl)
	}
	log.Info("Source ready", zap.String("kind", cfg.Kind), zap.Duration("cacheTTL", ttl))

	return &f, nil
}

// NewFactory wraps an already built source.
func NewFactory(src Source, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{source: src, log: log}
}

func (f *Factory) openS3(ctx context.Context, cfg data.Source, timeout time.Duration) error {
	var settings aws.ProfileSettings
	pm, err := aws.NewProfileManager()
	switch {
	case errors.Is(err, aws.ErrNoProfiles):
		f.log.Info("No AWS profiles found, using environment credentials")
	case err != nil:
		return err
	default:
		if cfg.Profile != "" {
			if err := pm.SetActiveProfile(cfg.Profile, cfg.Region); err != nil {
				return err
			}
		}
		settings = pm
	}

	cc := aws.ClientConfig{
		Profile:  cfg.Profile,
		Region:   cfg.Region,
		Endpoint: cfg.S3Endpoint,
		Timeout:  timeout,
	}
	if settings != nil {
		if cc.Profile == "" {
			cc.Profile, _ = settings.CurrentProfileName()
		}
		if cc.Region == "" {
			cc.Region, _ = settings.CurrentRegion()
		}
	}
	client, err := aws.NewAPIClient(settings, &cc)
	if err != nil {
		return err
	}
	if !client.CheckConnectivity(ctx) {
		f.log.Warn("AWS connectivity check failed",
			zap.String("profile", client.ActiveProfile()),
			zap.String("region", client.ActiveRegion()),
		)
	}
	s3c := client.S3()
	if s3c == nil {
		return aws.ErrNoConnection
	}
	f.conn = client
	f.s3 = NewS3Source(s3c, cfg.Bucket, cfg.Prefix, f.log)
	f.source = f.s3

	return nil
}

func (f *Factory) openSQLite(cfg data.Source) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("sqlite source: dbPath is required")
	}
	store, err := OpenSQLiteStore(cfg.DBPath, f.log)
	if err != nil {
		return err
	}
	f.closers = append(f.closers, store)
	f.source = store

	return nil
}

// Source returns the configured source.
func (f *Factory) Source() Source {
	return f.source
}

// Kind returns the source kind, e.g. graphql.
func (f *Factory) Kind() string {
	return f.kind
}

// Connection returns the AWS session of an s3 source, nil otherwise.
func (f *Factory) Connection() aws.Connection {
	return f.conn
}

// SwitchProfile moves an s3 source onto another AWS profile. Cached pages
// are dropped since they belong to the previous account.
func (f *Factory) SwitchProfile(ctx context.Context, profile string) error {
	if f.conn == nil || f.s3 == nil {
		return ErrNoAWSSession
	}
	if err := f.conn.SwitchProfile(profile); err != nil {
		return err
	}
	if !f.conn.CheckConnectivity(ctx) {
		f.log.Warn("AWS connectivity check failed", zap.String("profile", profile))
	}
	s3c := f.conn.S3()
	if s3c == nil {
		return aws.ErrNoConnection
	}
	f.s3.SetClient(s3c)
	if c, ok := f.source.(*CachedSource); ok {
		c.Purge()
	}
	f.log.Info("Switched AWS profile",
		zap.String("profile", f.conn.ActiveProfile()),
		zap.String("region", f.conn.ActiveRegion()),
	)

	return nil
}

// Invalidate drops cached pages of a resource. It is a no-op when the
// cache is off.
func (f *Factory) Invalidate(rid ResourceID) {
	if c, ok := f.source.(*CachedSource); ok {
		c.Invalidate(rid)
	}
}

// Close releases the resources held by the source.
func (f *Factory) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil

	return errors.Join(errs...)
}
