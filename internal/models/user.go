package models

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ResetOTPValidity is how long a password-reset code stays usable after issuance.
const ResetOTPValidity = 10 * time.Minute

// Reset-flow errors returned by VerifyResetOTP.
// Their texts double as the client-facing messages.
var (
	ErrNoResetPending   = errors.New("No OTP has been generated for this account")
	ErrResetOTPExpired  = errors.New("OTP has expired. Please request a new one")
	ErrResetOTPMismatch = errors.New("Invalid OTP")
)

// User represents a registered account of the portal.
//
// Password holds the plaintext only between request parsing and hashing; once
// the user has been persisted it always holds the bcrypt digest. It is never
// rendered to JSON.
type User struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	FullName       string     `json:"full_name" bson:"full_name" validate:"required,min=2"`
	Email          string     `json:"email" bson:"email" validate:"required,email"`
	Username       string     `json:"username" bson:"username" validate:"required,min=3,max=30,username"`
	Password       string     `json:"-" bson:"password" validate:"required,min=6"`
	ResetOTP       string     `json:"-" bson:"reset_otp,omitempty"`
	ResetOTPExpiry *time.Time `json:"-" bson:"reset_otp_expiry,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// Profile is the identity summary returned to clients. It never carries the
// password digest or the reset-code fields.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Profile returns the client-safe view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Username: u.Username,
	}
}

// Normalize lowercases the case-insensitive identity fields. It must run
// before every lookup and before the first persist, so the unique indexes on
// email and username always compare lowercased values.
func (u *User) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.FullName = strings.TrimSpace(u.FullName)
}

// GenerateResetOTP issues a fresh 6-digit reset code valid for
// ResetOTPValidity, overwriting any code still pending on the record.
func (u *User) GenerateResetOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	otp := strconv.FormatInt(n.Int64()+100000, 10)
	expiry := time.Now().Add(ResetOTPValidity)
	u.ResetOTP = otp
	u.ResetOTPExpiry = &expiry
	return otp, nil
}

// VerifyResetOTP checks the supplied code against the pending one. It does
// NOT consume the code: the reset flow is two-phase, and the code is only
// cleared once the new password is actually committed (ClearResetOTP).
func (u *User) VerifyResetOTP(otp string) error {
	if u.ResetOTP == "" || u.ResetOTPExpiry == nil {
		return ErrNoResetPending
	}
	if !time.Now().Before(*u.ResetOTPExpiry) {
		return ErrResetOTPExpired
	}
	if u.ResetOTP != otp {
		return ErrResetOTPMismatch
	}
	return nil
}

// ClearResetOTP drops both reset fields together, returning the record to the
// no-active-reset state.
func (u *User) ClearResetOTP() {
	u.ResetOTP = ""
	u.ResetOTPExpiry = nil
}
