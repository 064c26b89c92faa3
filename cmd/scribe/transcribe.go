package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

func runTranscribe(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "transcribe")
	lang := fs.String("lang", string(transcription.DefaultLanguage), "source language (ko or en)")
	kind := fs.String("type", string(transcription.ContentSermon), "content type: sermon, phonecall or conversation")
	correct := fs.Bool("correct", false, "ask the service to correct the transcript")
	summary := fs.String("summary", "", "summarize the transcript afterwards: short or detailed")
	quiet := fs.Bool("q", false, "do not report progress")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := validation.New().
		Required("file", fs.Arg(0)).
		OneOf("lang", *lang, []string{"ko", "en"}).
		OneOf("type", *kind, []string{"sermon", "phonecall", "conversation"}).
		Custom(*summary == "" || *summary == "short" || *summary == "detailed", "summary", "must be short or detailed").
		Validate(); err != nil {
		return err
	}

	req, closer, err := e.client.OpenFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer closer.Close()
	req.Language = transcription.Language(*lang)
	req.ContentType = transcription.ContentType(*kind)
	req.Correct = *correct

	prog := job.NewProgress(e.client.Config().Poll.ProgressAfter)
	var onUpdate func(job.Update)
	if !*quiet {
		var last job.Phase
		onUpdate = func(u job.Update) {
			if u.Phase != last {
				last = u.Phase
				fmt.Fprintf(e.errOut, "%s: %s (%s)\n", u.TaskID, u.Phase, u.Elapsed.Round(time.Second))
			}
		}
		fmt.Fprintf(e.errOut, "uploading %s (%s)\n", req.FileName, errors.FormatBytes(req.Size))
	}
	res, err := e.client.TranscribeWithProgress(ctx, req, prog, onUpdate)
	if err != nil {
		return err
	}
	if *summary != "" {
		s, err := e.client.Actions().Summarize(ctx, res.Text(), transcription.SummaryKind(*summary))
		if err != nil {
			return err
		}
		res.Summary = s
	}
	return printResult(e, res)
}

func runStatus(ctx context.Context, e *env, args []string) error {
	id, err := taskArg(e, "status", args)
	if err != nil {
		return err
	}
	j, err := e.client.Status(ctx, id)
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, j)
	}
	fmt.Fprintf(e.out, "%s\t%s\n", j.TaskID, j.Status)
	if j.Error != "" {
		fmt.Fprintf(e.out, "error: %s\n", j.Error)
	}
	return nil
}

func runResult(ctx context.Context, e *env, args []string) error {
	id, err := taskArg(e, "result", args)
	if err != nil {
		return err
	}
	res, err := e.client.LoadResult(ctx, id)
	if err != nil {
		return err
	}
	return printResult(e, res)
}

func runHistory(ctx context.Context, e *env, args []string) error {
	if err := parse(newFlags(e, "history"), args); err != nil {
		return err
	}
	items, err := e.client.History(ctx)
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, items)
	}
	tw := table(e, "TASK", "STATUS", "TYPE", "CHARS", "CREATED", "PREVIEW")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", it.TaskID, it.Status, it.Type, it.Characters, it.CreatedAt, preview(it.SummaryPreview, 40))
	}
	return tw.Flush()
}

func taskArg(e *env, name string, args []string) (string, error) {
	fs := newFlags(e, name)
	if err := parse(fs, args); err != nil {
		return "", err
	}
	id := strings.TrimSpace(fs.Arg(0))
	if err := validation.New().Required("task_id", id).TaskID("task_id", id).Validate(); err != nil {
		return "", err
	}
	return id, nil
}
