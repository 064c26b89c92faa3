// Package transcription holds the domain types shared by the API client, the
// job poller and the scribe facade: job statuses, content types, results and
// the request shapes of the record and auth endpoints.
//
// Provider follows the toolkit provider pattern so any backend able to turn
// audio into text can stand behind the scribe facade.
package transcription
