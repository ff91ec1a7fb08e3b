package testutil

import (
	"context"
	"sync"

	"github.com/seaportal/apiserver/internal/legacy"
	"github.com/seaportal/apiserver/types"
)

// MemoryDirectory is an in-memory legacy directory.
type MemoryDirectory struct {
	mu         sync.Mutex
	identities map[string]types.LegacyIdentity
	profiles   map[string]types.LegacyProfile

	// Err, when set, is returned by every lookup.
	Err error

	calls int
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		identities: make(map[string]types.LegacyIdentity),
		profiles:   make(map[string]types.LegacyProfile),
	}
}

// Add registers identity and, when profile is non-nil, its profile.
func (d *MemoryDirectory) Add(identity types.LegacyIdentity, profile *types.LegacyProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.identities[identity.Email] = identity
	if profile != nil {
		p := *profile
		p.ID = identity.ID
		d.profiles[identity.ID] = p
	}
}

func (d *MemoryDirectory) FindIdentityByEmail(_ context.Context, email string) (types.LegacyIdentity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	if d.Err != nil {
		return types.LegacyIdentity{}, d.Err
	}
	identity, ok := d.identities[email]
	if !ok {
		return types.LegacyIdentity{}, legacy.ErrNotFound
	}
	return identity, nil
}

func (d *MemoryDirectory) FindProfileByID(_ context.Context, id string) (types.LegacyProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Err != nil {
		return types.LegacyProfile{}, d.Err
	}
	profile, ok := d.profiles[id]
	if !ok {
		return types.LegacyProfile{}, legacy.ErrNotFound
	}
	return profile, nil
}

func (d *MemoryDirectory) Exists(_ context.Context, email string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	if d.Err != nil {
		return false, d.Err
	}
	_, ok := d.identities[email]
	return ok, nil
}

// Calls returns how many identity lookups were made.
func (d *MemoryDirectory) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
