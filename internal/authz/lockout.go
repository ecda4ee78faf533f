package authz

import (
	"time"

	"campus/internal/models"
)

const (
	// LockoutThreshold is the failed-attempt count that must be exceeded
	// before a lock is considered.
	LockoutThreshold = 5
	// LockoutDuration is how long an auto-lock holds.
	LockoutDuration = 24 * time.Hour
)

// Fingerprint is the login context used to judge whether a burst of
// failures looks like an attacker: the caller's IP, coarse device type,
// and client-provided device id.
type Fingerprint struct {
	IP         string
	DeviceType string
	DeviceID   string
}

// matchesAny reports whether any of the three fields equals the stored
// fingerprint. A single match is enough to suppress auto-lock, which
// protects users on shared IPs or shared devices from false positives.
func matchesAny(st *models.LoginState, fp Fingerprint) bool {
	return st.LastIP == fp.IP || st.LastDeviceType == fp.DeviceType || st.LastDeviceID == fp.DeviceID
}

// LockoutPolicy is the state machine over per-account login failure
// counters. It is pure: it mutates the passed LoginState in place and
// leaves persistence and per-account atomicity to the caller, which
// must apply updates under a row lock or equivalent.
type LockoutPolicy struct{}

// NewLockoutPolicy returns the lockout state machine.
func NewLockoutPolicy() *LockoutPolicy {
	return &LockoutPolicy{}
}

// IsLocked reports whether the account is locked at the given instant,
// and until when.
func (p *LockoutPolicy) IsLocked(st *models.LoginState, now time.Time) (bool, *time.Time) {
	if st == nil || st.LockedUntil == nil {
		return false, nil
	}
	if now.After(*st.LockedUntil) {
		return false, nil
	}
	return true, st.LockedUntil
}

// RecordFailure registers a failed login attempt. The counter always
// increments. A lock is applied only when the counter exceeds the
// threshold AND a prior successful-login fingerprint exists AND all
// three fingerprint fields differ from it. With no history at all the
// account is never auto-locked: there is nothing to call anomalous.
// Returns true when this failure transitioned the account to locked.
func (p *LockoutPolicy) RecordFailure(st *models.LoginState, fp Fingerprint, now time.Time) bool {
	st.FailedAttempts++
	if st.FailedAttempts <= LockoutThreshold {
		return false
	}
	if !st.HasFingerprint {
		return false
	}
	if matchesAny(st, fp) {
		return false
	}
	until := now.Add(LockoutDuration)
	st.LockedUntil = &until
	return true
}

// RecordSuccess registers a successful login: the counter resets, an
// expired lock is cleared, and the fingerprint becomes the new
// baseline. Callers must reject the login beforehand when IsLocked
// still holds; RecordSuccess assumes the attempt was legitimate.
func (p *LockoutPolicy) RecordSuccess(st *models.LoginState, fp Fingerprint, now time.Time) {
	st.FailedAttempts = 0
	if st.LockedUntil != nil && now.After(*st.LockedUntil) {
		st.LockedUntil = nil
	}
	st.HasFingerprint = true
	st.LastIP = fp.IP
	st.LastDeviceType = fp.DeviceType
	st.LastDeviceID = fp.DeviceID
}

// AdminUnlock clears the lock and the counter immediately, regardless
// of the timer.
func (p *LockoutPolicy) AdminUnlock(st *models.LoginState) {
	st.FailedAttempts = 0
	st.LockedUntil = nil
}
