package aws_test

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/spanlens/spanlens/internal/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAWSError(t *testing.T) {
	uu := map[string]struct {
		err      error
		sentinel error
		msg      string
	}{
		"nil": {},
		"expired": {
			err:      &smithy.GenericAPIError{Code: "ExpiredToken", Message: "expired"},
			sentinel: aws.ErrExpiredCredentials,
		},
		"bad-key": {
			err:      &smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "nope"},
			sentinel: aws.ErrNoCredentials,
		},
		"no-key": {
			err:      &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"},
			sentinel: aws.ErrNoSuchKey,
		},
		"denied": {
			err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
			msg: "access denied for list spans",
		},
		"other-api": {
			err: &smithy.GenericAPIError{Code: "Teapot", Message: "short and stout"},
			msg: "list spans failed: short and stout (Teapot)",
		},
		"plain": {
			err: errors.New("dial tcp"),
			msg: "list spans failed: dial tcp",
		},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			err := aws.WrapAWSError(u.err, "list spans")
			if u.err == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if u.sentinel != nil {
				assert.ErrorIs(t, err, u.sentinel)
			}
			if u.msg != "" {
				assert.Contains(t, err.Error(), u.msg)
			}
		})
	}
}

func TestObjectPrefix(t *testing.T) {
	assert.Equal(t, "exports/spans/proj-1/", aws.ObjectPrefix("exports/", "spans", "/proj-1"))
	assert.Equal(t, "spans/", aws.ObjectPrefix("", "spans", ""))
	assert.Equal(t, "", aws.ObjectPrefix(""))
}

func TestNewAPIClient(t *testing.T) {
	_, err := aws.NewAPIClient(nil, nil)
	assert.Error(t, err)

	c, err := aws.NewAPIClient(nil, &aws.ClientConfig{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, aws.DefaultRegion, c.ActiveRegion())
	assert.Equal(t, "dev", c.ActiveProfile())
	assert.False(t, c.ConnectionOK())
	assert.Nil(t, c.ProfileNames())
	assert.ErrorIs(t, c.SwitchProfile("prod"), aws.ErrInvalidProfile)
}
