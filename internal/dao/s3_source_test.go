package dao

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spanlens/spanlens/internal/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mx      sync.Mutex
	objects map[string]string
	order   []string
	lists   []*s3.ListObjectsV2Input
	getErr  error
}

func newFakeS3(keys ...string) *fakeS3 {
	f := fakeS3{objects: make(map[string]string)}
	for _, k := range keys {
		f.objects[k] = `{"id":"` + k[strings.LastIndex(k, "/")+1:] + `"}`
		f.order = append(f.order, k)
	}
	return &f
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.lists = append(f.lists, in)

	var keys []string
	for _, k := range f.order {
		if strings.HasPrefix(k, awssdk.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	start := 0
	if tok := awssdk.ToString(in.ContinuationToken); tok != "" {
		for i, k := range keys {
			if k == tok {
				start = i
			}
		}
	}
	end := len(keys)
	if n := int(awssdk.ToInt32(in.MaxKeys)); n > 0 && start+n < end {
		end = start + n
	}

	out := s3.ListObjectsV2Output{IsTruncated: awssdk.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: awssdk.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = awssdk.String(keys[end])
	}

	return &out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mx.Lock()
	body, ok := f.objects[awssdk.ToString(in.Key)]
	f.mx.Unlock()
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceFetch(t *testing.T) {
	fake := newFakeS3(
		"exports/spans/p1/",
		"exports/spans/p1/s1",
		"exports/spans/p1/s2",
		"exports/spans/p1/s3",
		"exports/spans/p2/s9",
	)
	src := NewS3Source(fake, "bkt", "exports", nil)
	rid := ResourceID{Resource: SpansResource, Scope: "p1"}

	p1, err := src.Fetch(context.Background(), rid, PageRequest{First: 3})
	require.NoError(t, err)
	require.Len(t, p1.Edges, 2, "directory markers are skipped")
	assert.Equal(t, "exports/spans/p1/s1", p1.Edges[0].Cursor)
	assert.JSONEq(t, `{"id":"s2"}`, string(p1.Edges[1].Node))
	assert.True(t, p1.HasNext())

	p2, err := src.Fetch(context.Background(), rid, PageRequest{First: 3, After: p1.NextCursor("")})
	require.NoError(t, err)
	require.Len(t, p2.Edges, 1)
	assert.JSONEq(t, `{"id":"s3"}`, string(p2.Edges[0].Node))
	assert.False(t, p2.HasNext())

	require.Len(t, fake.lists, 2)
	assert.Equal(t, "exports/spans/p1/", awssdk.ToString(fake.lists[0].Prefix))
	assert.Equal(t, "bkt", awssdk.ToString(fake.lists[0].Bucket))
	assert.EqualValues(t, 3, awssdk.ToInt32(fake.lists[0].MaxKeys))
	assert.Nil(t, fake.lists[0].ContinuationToken)
	assert.Equal(t, "exports/spans/p1/s3", awssdk.ToString(fake.lists[1].ContinuationToken))
}

func TestS3SourceFetchError(t *testing.T) {
	fake := newFakeS3("spans/p1/s1")
	fake.getErr = &smithy.GenericAPIError{Code: "ExpiredToken", Message: "expired"}

	_, err := NewS3Source(fake, "bkt", "", nil).Fetch(context.Background(), ResourceID{Resource: SpansResource, Scope: "p1"}, PageRequest{First: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, aws.ErrExpiredCredentials))
}
