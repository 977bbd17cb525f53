package models

import (
	"errors"
	"testing"
)

func verifiedProfile() *Profile {
	return &Profile{
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		IDCardURL:  "https://cdn/id/asha.jpg",
		IsVerified: true,
	}
}

func TestGatePassesVerifiedProfile(t *testing.T) {
	if err := Gate(verifiedProfile()); err != nil {
		t.Fatalf("verified profile should pass the gate: %v", err)
	}
}

func TestGateNilProfile(t *testing.T) {
	if err := Gate(nil); !errors.Is(err, ErrProfileLoading) {
		t.Fatalf("got %v, want ErrProfileLoading", err)
	}
}

func TestGateChecksInFixedOrder(t *testing.T) {
	// incomplete wins over unverified
	p := verifiedProfile()
	p.Phone = ""
	p.IsVerified = false
	if err := Gate(p); !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("got %v, want ErrProfileIncomplete", err)
	}

	// unverified wins over banned
	p = verifiedProfile()
	p.IsVerified = false
	p.IsBanned = true
	if err := Gate(p); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("got %v, want ErrNotVerified", err)
	}

	// banned is the last check standing
	p = verifiedProfile()
	p.IsBanned = true
	if err := Gate(p); !errors.Is(err, ErrBanned) {
		t.Fatalf("got %v, want ErrBanned", err)
	}
}

func TestGateEachMissingField(t *testing.T) {
	for _, mutate := range []func(*Profile){
		func(p *Profile) { p.FullName = "" },
		func(p *Profile) { p.Phone = "" },
		func(p *Profile) { p.IDCardURL = "" },
	} {
		p := verifiedProfile()
		mutate(p)
		if err := Gate(p); !errors.Is(err, ErrProfileIncomplete) {
			t.Fatalf("got %v, want ErrProfileIncomplete", err)
		}
	}
}

func TestIsGateError(t *testing.T) {
	for _, err := range []error{ErrProfileLoading, ErrProfileIncomplete, ErrNotVerified, ErrBanned} {
		if !IsGateError(err) {
			t.Errorf("%v should be a gate error", err)
		}
	}
	if IsGateError(errors.New("database on fire")) {
		t.Error("backend failures are not gate errors")
	}
}
