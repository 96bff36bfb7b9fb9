package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spanlens/spanlens/internal/aws"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultS3Concurrency caps parallel object downloads per page.
const DefaultS3Concurrency = 8

// S3API is the slice of the S3 client used by S3Source.
type S3API interface {
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source pages through span exports stored one JSON node per object
// under <prefix>/<resource>/<scope>/. The S3 continuation token is the
// page cursor.
type S3Source struct {
	client      S3API
	bucket      string
	prefix      string
	concurrency int
	log         *zap.Logger
	mx          sync.RWMutex
}

// NewS3Source returns a source over an export bucket.
func NewS3Source(client S3API, bucket, prefix string, log *zap.Logger) *S3Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Source{
		client:      client,
		bucket:      bucket,
		prefix:      prefix,
		concurrency: DefaultS3Concurrency,
		log:         log,
	}
}

// SetClient swaps the S3 client, e.g. after a profile switch.
func (s *S3Source) SetClient(c S3API) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.client = c
}

func (s *S3Source) api() S3API {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.client
}

// Fetch lists one page of keys and downloads their nodes concurrently.
// Edges keep the listing order.
func (s *S3Source) Fetch(ctx context.Context, rid ResourceID, req PageRequest) (*Page, error) {
	input := s3.ListObjectsV2Input{
		Bucket: awssdk.String(s.bucket),
		Prefix: awssdk.String(aws.ObjectPrefix(s.prefix, rid.Resource, rid.Scope)),
	}
	if req.First > 0 {
		input.MaxKeys = awssdk.Int32(int32(req.First))
	}
	if req.After != "" {
		input.ContinuationToken = awssdk.String(req.After)
	}

	out, err := s.api().ListObjectsV2(ctx, &input)
	if err != nil {
		return nil, aws.WrapAWSError(err, "list "+rid.String())
	}

	keys := make([]string, 0, len(out.Contents))
	for _, o := range out.Contents {
		if k := awssdk.ToString(o.Key); k != "" && !strings.HasSuffix(k, "/") {
			keys = append(keys, k)
		}
	}

	edges := make([]Edge, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, k := range keys {
		g.Go(func() error {
			node, err := s.getNode(gctx, k)
			if err != nil {
				return err
			}
			edges[i] = Edge{Cursor: k, Node: node}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.log.Debug("s3 page",
		zap.String("rid", rid.String()),
		zap.Int("edges", len(edges)),
		zap.Bool("truncated", awssdk.ToBool(out.IsTruncated)),
	)

	page := Page{
		Edges:    edges,
		PageInfo: &PageInfo{HasNextPage: awssdk.ToBool(out.IsTruncated)},
	}
	if page.PageInfo.HasNextPage {
		page.PageInfo.EndCursor = out.NextContinuationToken
	}

	return &page, nil
}

func (s *S3Source) getNode(ctx context.Context, key string) (json.RawMessage, error) {
	out, err := s.api().GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, aws.WrapAWSError(err, "get "+key)
	}
	defer out.Body.Close()

	bb, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return json.RawMessage(bb), nil
}
