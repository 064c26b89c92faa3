// Package security builds the TLS settings used when talking to the
// transcription API, including private CAs and client certificates.
package security
