package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateResetOTP(t *testing.T) {
	user := &User{ID: "user-1"}

	otp, err := user.GenerateResetOTP()
	assert.NoError(t, err)
	assert.Len(t, otp, 6)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, otp)
	assert.Equal(t, otp, user.ResetOTP)

	// Expiry lands 10 minutes out
	assert.NotNil(t, user.ResetOTPExpiry)
	assert.WithinDuration(t, time.Now().Add(ResetOTPValidity), *user.ResetOTPExpiry, 5*time.Second)

	// Issuing again overwrites the pending code's expiry
	first := *user.ResetOTPExpiry
	time.Sleep(10 * time.Millisecond)
	_, err = user.GenerateResetOTP()
	assert.NoError(t, err)
	assert.True(t, user.ResetOTPExpiry.After(first))
}

func TestVerifyResetOTP(t *testing.T) {
	expiresIn := func(d time.Duration) *time.Time {
		e := time.Now().Add(d)
		return &e
	}

	t.Run("no code pending", func(t *testing.T) {
		user := &User{}
		assert.ErrorIs(t, user.VerifyResetOTP("123456"), ErrNoResetPending)
	})

	t.Run("valid before expiry", func(t *testing.T) {
		user := &User{ResetOTP: "654321", ResetOTPExpiry: expiresIn(time.Minute)}
		assert.NoError(t, user.VerifyResetOTP("654321"))
	})

	t.Run("expired", func(t *testing.T) {
		user := &User{ResetOTP: "654321", ResetOTPExpiry: expiresIn(-time.Minute)}
		assert.ErrorIs(t, user.VerifyResetOTP("654321"), ErrResetOTPExpired)
	})

	t.Run("mismatch", func(t *testing.T) {
		user := &User{ResetOTP: "654321", ResetOTPExpiry: expiresIn(time.Minute)}
		assert.ErrorIs(t, user.VerifyResetOTP("111111"), ErrResetOTPMismatch)
	})

	t.Run("verify does not consume", func(t *testing.T) {
		user := &User{ResetOTP: "654321", ResetOTPExpiry: expiresIn(time.Minute)}
		assert.NoError(t, user.VerifyResetOTP("654321"))
		// Still pending: a second verify succeeds until an explicit clear
		assert.NoError(t, user.VerifyResetOTP("654321"))
	})

	t.Run("clear drops both fields", func(t *testing.T) {
		user := &User{ResetOTP: "654321", ResetOTPExpiry: expiresIn(time.Minute)}
		user.ClearResetOTP()
		assert.Empty(t, user.ResetOTP)
		assert.Nil(t, user.ResetOTPExpiry)
		assert.ErrorIs(t, user.VerifyResetOTP("654321"), ErrNoResetPending)
	})
}

func TestNormalize(t *testing.T) {
	user := &User{
		FullName: "  Ada L ",
		Email:    " ADA@X.COM ",
		Username: "Ada1",
	}
	user.Normalize()

	assert.Equal(t, "Ada L", user.FullName)
	assert.Equal(t, "ada@x.com", user.Email)
	assert.Equal(t, "ada1", user.Username)
}

func TestProfileOmitsSecrets(t *testing.T) {
	expiry := time.Now().Add(time.Minute)
	user := &User{
		ID:             "user-1",
		FullName:       "Ada L",
		Email:          "ada@x.com",
		Username:       "ada1",
		Password:       "$2a$10$somedigest",
		ResetOTP:       "123456",
		ResetOTPExpiry: &expiry,
	}

	profile := user.Profile()
	assert.Equal(t, Profile{
		ID:       "user-1",
		FullName: "Ada L",
		Email:    "ada@x.com",
		Username: "ada1",
	}, profile)
}
