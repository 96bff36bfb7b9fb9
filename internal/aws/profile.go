package aws

import (
	"fmt"
	"sync"
)

type ProfileSettings interface {
	CurrentProfileName() (string, error)
	CurrentRegion() (string, error)
	ProfileNames() (map[string]struct{}, error)
	SetActiveProfile(profile, region string) error
}

type Profile struct {
	Name          string
	DefaultRegion string
	RoleARN       string
	SourceProfile string
}

type ProfileManager struct {
	profiles      map[string]*Profile
	activeProfile string
	activeRegion  string
	mx            sync.RWMutex
}

// NewProfileManager loads the profiles of the shared AWS files.
func NewProfileManager() (*ProfileManager, error) {
	return NewProfileManagerFrom(NewCredentialDiscovery())
}

// NewProfileManagerFrom loads the profiles found by a discovery.
func NewProfileManagerFrom(d *CredentialDiscovery) (*ProfileManager, error) {
	names, err := d.DiscoverProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover profiles: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoProfiles
	}

	m := ProfileManager{profiles: make(map[string]*Profile, len(names))}
	for _, name := range names {
		info, err := d.GetCredentialInfo(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get credential info for profile %q: %w", name, err)
		}
		p := Profile{
			Name:          name,
			DefaultRegion: info.Region,
			RoleARN:       info.RoleARN,
			SourceProfile: info.SourceProfile,
		}
		if p.DefaultRegion == "" {
			p.DefaultRegion = DefaultRegion
		}
		m.profiles[name] = &p
	}

	active := d.GetDefaultProfile()
	p, ok := m.profiles[active]
	if !ok {
		return nil, fmt.Errorf("%w: default profile %q not found", ErrInvalidProfile, active)
	}
	m.activeProfile, m.activeRegion = active, p.DefaultRegion

	return &m, nil
}

// CurrentProfileName returns the name of the currently active profile.
func (m *ProfileManager) CurrentProfileName() (string, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	if m.activeProfile == "" {
		return "", fmt.Errorf("no active profile set")
	}
	return m.activeProfile, nil
}

// CurrentRegion returns the region of the currently active profile.
func (m *ProfileManager) CurrentRegion() (string, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	if m.activeRegion == "" {
		return "", fmt.Errorf("no active region set")
	}
	return m.activeRegion, nil
}

// ProfileNames returns a set of all available profile names.
func (m *ProfileManager) ProfileNames() (map[string]struct{}, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	names := make(map[string]struct{}, len(m.profiles))
	for name := range m.profiles {
		names[name] = struct{}{}
	}
	return names, nil
}

// GetProfile returns a copy of the named profile.
func (m *ProfileManager) GetProfile(name string) (*Profile, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	p, ok := m.profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	cp := *p
	return &cp, nil
}

// SetActiveProfile sets the active profile and region. An empty region
// selects the profile default.
func (m *ProfileManager) SetActiveProfile(profile, region string) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	p, ok := m.profiles[profile]
	if !ok {
		return fmt.Errorf("profile %q not found", profile)
	}
	if region == "" {
		region = p.DefaultRegion
	}
	m.activeProfile, m.activeRegion = profile, region

	return nil
}
