package auth

import "time"

// LockoutConfig drives the account lockout policy.
type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// Locked reports whether the account's lockout window is still open at
// the given time. An expired lock counts as unlocked; nothing sweeps the
// stored field, expiry is evaluated lazily on the next attempt.
func Locked(account *Account, now time.Time) bool {
	return account.LockedUntil != nil && account.LockedUntil.After(now)
}

// RecordFailure increments the failed-attempt counter and, once the
// configured threshold is reached, opens a lockout window. The caller
// persists the mutation in the same transaction as the failed login.
func (c LockoutConfig) RecordFailure(account *Account, now time.Time) {
	account.FailedLoginAttempts++
	if account.FailedLoginAttempts >= c.MaxAttempts {
		until := now.Add(c.LockoutDuration)
		account.LockedUntil = &until
	}
}

// ClearLock resets the failure counter and drops any lockout window. It
// runs on every successful login, in the same transaction that records
// the success.
func ClearLock(account *Account) {
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
}
