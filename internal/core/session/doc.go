// Package session issues and verifies the signed cookie credential that
// binds a caller's email to an expiry.
//
// A token is the unpadded base64url encoding of
//
//	[CBOR claims] [32-byte HMAC-SHA256 over the claims]
//
// The split point is always len(raw) - 32. Verification needs only the
// server secret; nothing is stored, and a token stays valid until its
// expiry even after the client discards the cookie.
package session
