// Package job implements the client side of the asynchronous transcription
// protocol.
//
// A Submitter checks a request against the upload ceiling and sends it. When
// the service queues the work, a Poller asks for the job status every
// interval until the job completes or fails, and a Tracker makes sure only
// one such loop runs at a time: starting a new one stops the previous.
//
// Progress is a coarse phase indicator for display. It advances on elapsed
// time and pending statuses and plays no part in terminal-state detection.
package job
