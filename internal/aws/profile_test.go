package aws_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spanlens/spanlens/internal/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	credentialsFile = `[default]
aws_access_key_id = AKIA
aws_secret_access_key = secret

[exports]
aws_access_key_id = AKIB
aws_secret_access_key = secret
aws_session_token = token
`

	configFile = `[default]
region = eu-west-1

[profile exports]
region = us-west-2
role_arn = arn:aws:iam::123456789012:role/span-reader

[profile sso-only]
sso_start_url = https://example.awsapps.com/start
`
)

func writeAWSFiles(t *testing.T) *aws.CredentialDiscovery {
	t.Helper()
	dir := t.TempDir()
	creds, cfg := filepath.Join(dir, "credentials"), filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(creds, []byte(credentialsFile), 0o600))
	require.NoError(t, os.WriteFile(cfg, []byte(configFile), 0o600))

	return aws.NewCredentialDiscoveryAt(creds, cfg)
}

func TestDiscoverProfiles(t *testing.T) {
	d := writeAWSFiles(t)

	pp, err := d.DiscoverProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "exports", "sso-only"}, pp)
}

func TestDiscoverProfilesNoFiles(t *testing.T) {
	dir := t.TempDir()
	d := aws.NewCredentialDiscoveryAt(filepath.Join(dir, "nope"), filepath.Join(dir, "nada"))

	pp, err := d.DiscoverProfiles()
	require.NoError(t, err)
	assert.Empty(t, pp)

	_, err = aws.NewProfileManagerFrom(d)
	assert.ErrorIs(t, err, aws.ErrNoProfiles)
}

func TestGetCredentialInfo(t *testing.T) {
	d := writeAWSFiles(t)

	info, err := d.GetCredentialInfo("exports")
	require.NoError(t, err)
	assert.Equal(t, aws.CredentialSourceSharedCredentials, info.Source)
	assert.True(t, info.HasSessionToken)
	assert.Equal(t, "us-west-2", info.Region)
	assert.Equal(t, "arn:aws:iam::123456789012:role/span-reader", info.RoleARN)

	info, err = d.GetCredentialInfo("sso-only")
	require.NoError(t, err)
	assert.Equal(t, aws.CredentialSourceSharedConfig, info.Source)
	assert.False(t, info.HasAccessKey)

	_, err = d.GetCredentialInfo("missing")
	assert.Error(t, err)
}

func TestProfileManager(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	d := writeAWSFiles(t)

	m, err := aws.NewProfileManagerFrom(d)
	require.NoError(t, err)

	name, err := m.CurrentProfileName()
	require.NoError(t, err)
	assert.Equal(t, "default", name)
	region, err := m.CurrentRegion()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", region)

	p, err := m.GetProfile("sso-only")
	require.NoError(t, err)
	assert.Equal(t, aws.DefaultRegion, p.DefaultRegion)

	require.NoError(t, m.SetActiveProfile("exports", ""))
	region, _ = m.CurrentRegion()
	assert.Equal(t, "us-west-2", region)
	assert.Error(t, m.SetActiveProfile("missing", ""))

	c, err := aws.NewAPIClient(m, &aws.ClientConfig{Profile: "default"})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "exports", "sso-only"}, c.ProfileNames())
	require.NoError(t, c.SwitchProfile("exports"))
	assert.Equal(t, "us-west-2", c.ActiveRegion())
}

func TestProfileManagerAWSProfile(t *testing.T) {
	t.Setenv("AWS_PROFILE", "ghost")

	_, err := aws.NewProfileManagerFrom(writeAWSFiles(t))
	assert.ErrorIs(t, err, aws.ErrInvalidProfile)
}
