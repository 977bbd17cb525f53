package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	FullName        string    `db:"full_name" json:"full_name"`
	Phone           string    `db:"phone" json:"phone"`
	RecoveryEmail   string    `db:"recovery_email" json:"recovery_email"`
	UpiID           string    `db:"upi_id" json:"upi_id"`
	IDCardURL       string    `db:"id_card_url" json:"id_card_url"`
	IsEmailVerified bool      `db:"is_email_verified" json:"is_email_verified"`
	IsVerified      bool      `db:"is_verified" json:"is_verified"`
	IsBanned        bool      `db:"is_banned" json:"is_banned"`
	ManaBalance     int       `db:"mana_balance" json:"mana_balance"`
	HasOnboarded    bool      `db:"has_onboarded" json:"has_onboarded"`
	Role            string    `db:"role" json:"role"`
	RoomNo          string    `db:"room_no" json:"room_no"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Gate failure reasons, checked in a fixed order. Every mutating marketplace
// action must pass the gate before any row is written.
var (
	ErrProfileLoading    = errors.New("profile is still loading, please wait")
	ErrProfileIncomplete = errors.New("complete your profile (name, phone and student ID) first")
	ErrNotVerified       = errors.New("your ID is pending admin approval")
	ErrBanned            = errors.New("your account is restricted, contact support")
)

// Gate decides whether the profile's owner may perform mutating marketplace
// actions. Pure predicate, no side effects; the returned error doubles as the
// user-facing reason.
func Gate(p *Profile) error {
	switch {
	case p == nil:
		return ErrProfileLoading
	case p.FullName == "" || p.Phone == "" || p.IDCardURL == "":
		return ErrProfileIncomplete
	case !p.IsVerified:
		return ErrNotVerified
	case p.IsBanned:
		return ErrBanned
	}
	return nil
}

// IsGateError reports whether err is one of the gate's advisory rejections,
// as opposed to a backend failure.
func IsGateError(err error) bool {
	return errors.Is(err, ErrProfileLoading) ||
		errors.Is(err, ErrProfileIncomplete) ||
		errors.Is(err, ErrNotVerified) ||
		errors.Is(err, ErrBanned)
}
