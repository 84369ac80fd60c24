package handlers

import (
	"testing"

	"curator/internal/core"
)

type fakeLister struct {
	profiles map[string]core.Profile
}

func (f *fakeLister) GetProfile(id string) (*core.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeLister) ListActiveProfiles() ([]core.Profile, error) {
	var active []core.Profile
	for _, p := range f.profiles {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func TestResolveProfiles(t *testing.T) {
	lister := &fakeLister{profiles: map[string]core.Profile{
		"michael": {ID: "michael", Active: true},
		"sarah":   {ID: "sarah", Active: true},
		"idle":    {ID: "idle", Active: false},
	}}

	one, err := resolveProfiles(lister, "michael")
	if err != nil {
		t.Fatalf("resolveProfiles failed: %v", err)
	}
	if len(one) != 1 || one[0].ID != "michael" {
		t.Errorf("expected michael, got %+v", one)
	}

	all, err := resolveProfiles(lister, "")
	if err != nil {
		t.Fatalf("resolveProfiles failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 active profiles, got %d", len(all))
	}

	if _, err := resolveProfiles(lister, "nobody"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestResolveProfiles_NoneActive(t *testing.T) {
	lister := &fakeLister{profiles: map[string]core.Profile{}}
	if _, err := resolveProfiles(lister, ""); err == nil {
		t.Error("expected error when no profiles are active")
	}
}

func TestDefaultProfileSeed(t *testing.T) {
	if defaultProfile.ID == "" || defaultProfile.Name == "" || defaultProfile.Email == "" {
		t.Errorf("default profile incomplete: %+v", defaultProfile)
	}
	if !defaultProfile.Active {
		t.Error("default profile must be active")
	}
	if len(defaultProfile.Interests) == 0 {
		t.Error("default profile needs interests for scoring")
	}
}
