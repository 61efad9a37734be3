// Package auth hashes and verifies account passwords.
//
// Passwords are stored as bcrypt hashes. There is no minimum length or
// composition policy; the only rejected input is a password longer than the
// 72 bytes bcrypt can digest.
//
// # Usage
//
//	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
//	...
//	if err := auth.CheckPassword(candidate, user.PasswordHash); err != nil {
//		// auth.ErrInvalidPassword on mismatch
//	}
package auth
