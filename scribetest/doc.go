// Package scribetest is an in-memory fake of the remote transcription API.
//
// It serves every endpoint the api client calls: uploads with an optional
// synchronous completion, scripted per-task status sequences, summaries,
// record drafts, history and email login with HS256 bearer tokens. Tests
// inject failures with Fail and assert traffic with Count:
//
//	fake, baseURL := scribetest.Start(t, scribetest.WithScript(scribetest.Queued, scribetest.Completed))
//	fake.Fail(scribetest.EndpointSummarize, http.StatusInternalServerError, "")
//
// cmd/scribe-fakeapi runs the same fake as a standalone server.
package scribetest
