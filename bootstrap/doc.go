// Package bootstrap runs a program's components through a uniform
// lifecycle. Long-running servers use Run; CLI commands use RunTask, which
// cancels the task on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithQuiet())
//	_ = app.RegisterComponent(client)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := client.Transcribe(ctx, req)
//	    return err
//	})
package bootstrap
