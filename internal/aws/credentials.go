package aws

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

type CredentialSource int

const (
	CredentialSourceSharedCredentials CredentialSource = iota
	CredentialSourceSharedConfig
)

type CredentialInfo struct {
	Profile         string
	Source          CredentialSource
	HasAccessKey    bool
	HasSecretKey    bool
	HasSessionToken bool
	RoleARN         string
	SourceProfile   string
	Region          string
}

// CredentialDiscovery reads profile details from the shared AWS files.
type CredentialDiscovery struct {
	credentialsPath string
	configPath      string
}

// NewCredentialDiscovery returns a discovery over ~/.aws/credentials and
// ~/.aws/config, honoring AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE.
func NewCredentialDiscovery() *CredentialDiscovery {
	creds := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if creds == "" {
		creds = filepath.Join(expandHomeDir("~"), ".aws", "credentials")
	}
	cfg := os.Getenv("AWS_CONFIG_FILE")
	if cfg == "" {
		cfg = filepath.Join(expandHomeDir("~"), ".aws", "config")
	}

	return NewCredentialDiscoveryAt(creds, cfg)
}

// NewCredentialDiscoveryAt returns a discovery over explicit file paths.
func NewCredentialDiscoveryAt(credentialsPath, configPath string) *CredentialDiscovery {
	return &CredentialDiscovery{
		credentialsPath: credentialsPath,
		configPath:      configPath,
	}
}

// DiscoverProfiles lists the profiles of both files, sorted.
// Missing files are not an error.
func (d *CredentialDiscovery) DiscoverProfiles() ([]string, error) {
	seen := make(map[string]struct{})

	creds, err := loadINI(d.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	if creds != nil {
		for _, s := range creds.Sections() {
			if name := s.Name(); name != ini.DefaultSection {
				seen[name] = struct{}{}
			}
		}
	}

	cfg, err := loadINI(d.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if cfg != nil {
		for _, s := range cfg.Sections() {
			if name, ok := configProfileName(s); ok {
				seen[name] = struct{}{}
			}
		}
	}

	profiles := make([]string, 0, len(seen))
	for p := range seen {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)

	return profiles, nil
}

// GetDefaultProfile returns AWS_PROFILE when set, "default" otherwise.
func (d *CredentialDiscovery) GetDefaultProfile() string {
	if profile := os.Getenv("AWS_PROFILE"); profile != "" {
		return profile
	}
	return "default"
}

// GetCredentialInfo returns the credential details of a profile. The
// credentials file wins over the config file; the region always comes from
// the config file.
func (d *CredentialDiscovery) GetCredentialInfo(profile string) (*CredentialInfo, error) {
	creds, err := loadINI(d.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	cfg, err := loadINI(d.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfgSection *ini.Section
	if cfg != nil {
		cfgSection, _ = cfg.GetSection(configSectionName(profile))
	}

	var info *CredentialInfo
	if creds != nil {
		if s, err := creds.GetSection(profile); err == nil {
			info = readSection(profile, CredentialSourceSharedCredentials, s)
		}
	}
	if info == nil && cfgSection != nil {
		info = readSection(profile, CredentialSourceSharedConfig, cfgSection)
	}
	if info == nil {
		return nil, fmt.Errorf("profile %q not found in credentials or config files", profile)
	}
	if cfgSection != nil {
		info.Region = cfgSection.Key("region").String()
		if info.RoleARN == "" {
			info.RoleARN = cfgSection.Key("role_arn").String()
		}
		if info.SourceProfile == "" {
			info.SourceProfile = cfgSection.Key("source_profile").String()
		}
	}

	return info, nil
}

func readSection(profile string, src CredentialSource, s *ini.Section) *CredentialInfo {
	return &CredentialInfo{
		Profile:         profile,
		Source:          src,
		HasAccessKey:    s.HasKey("aws_access_key_id"),
		HasSecretKey:    s.HasKey("aws_secret_access_key"),
		HasSessionToken: s.HasKey("aws_session_token"),
		RoleARN:         s.Key("role_arn").String(),
		SourceProfile:   s.Key("source_profile").String(),
	}
}

// loadINI returns nil when the file does not exist.
func loadINI(path string) (*ini.File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ini.Load(path)
}

func configSectionName(profile string) string {
	if profile == "default" {
		return "default"
	}
	return "profile " + profile
}

func configProfileName(s *ini.Section) (string, bool) {
	switch name := s.Name(); {
	case name == "default":
		return name, true
	case strings.HasPrefix(name, "profile "):
		return strings.TrimPrefix(name, "profile "), true
	default:
		return "", false
	}
}

// expandHomeDir expands ~ to the user's home directory.
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}
	return path
}
