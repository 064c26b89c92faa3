// Package scribe is the client for the transcription service. It wires the
// api client, the job submitter and poller, the result consumer actions and
// the login session into one component:
//
//	cfg := scribe.DefaultConfig()
//	cfg.API.BaseURL = "https://scribe.example.com/api"
//	client, err := scribe.New(cfg)
//	if err != nil { ... }
//	if err := client.Start(ctx); err != nil { ... }
//	defer client.Stop(ctx)
//
//	req, closer, err := client.OpenFile(ctx, "sermon.mp3")
//	defer closer.Close()
//	result, err := client.Transcribe(ctx, req)
//	summary, err := client.Actions().Summarize(ctx, result.Text(), transcription.SummaryShort)
package scribe
