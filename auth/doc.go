// Package auth groups the credential primitives the fake transcription API
// uses to issue and check logins: token signs and parses bearer tokens,
// password hashes and verifies account passwords.
package auth
