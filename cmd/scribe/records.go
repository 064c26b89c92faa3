package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// maxTextSize bounds transcript text read from a file or stdin.
const maxTextSize = 16 << 20

func runSummarize(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "summarize")
	kind := fs.String("kind", string(transcription.SummaryShort), "short or detailed")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := validation.New().
		Required("input", fs.Arg(0)).
		OneOf("kind", *kind, []string{"short", "detailed"}).
		Validate(); err != nil {
		return err
	}
	text, err := readText(e, fs.Arg(0))
	if err != nil {
		return err
	}
	summary, err := e.client.Actions().Summarize(ctx, text, transcription.SummaryKind(*kind))
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, map[string]string{"summary": summary})
	}
	fmt.Fprintln(e.out, summary)
	return nil
}

func runDraft(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "draft")
	category := fs.String("category", "", "record category, e.g. sermon or meeting")
	lang := fs.String("lang", string(transcription.DefaultLanguage), "draft language (ko or en)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := validation.New().
		Required("input", fs.Arg(0)).
		Required("category", *category).
		OneOf("lang", *lang, []string{"ko", "en"}).
		Validate(); err != nil {
		return err
	}
	text, err := readText(e, fs.Arg(0))
	if err != nil {
		return err
	}
	d, err := e.client.Actions().GenerateDraft(ctx, transcription.DraftRequest{
		Text:     text,
		Category: *category,
		Language: transcription.Language(*lang),
	})
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, d)
	}
	fmt.Fprintf(e.errOut, "draft: %s\n", d.CategoryLabel)
	fmt.Fprintln(e.out, d.Content)
	return nil
}

func runSave(ctx context.Context, e *env, args []string) error {
	fs := newFlags(e, "save")
	category := fs.String("category", "", "record category")
	title := fs.String("title", "", "record title")
	task := fs.String("task", "", "task id the record was drafted from")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := validation.New().
		Required("input", fs.Arg(0)).
		Required("category", *category).
		Required("title", *title).
		TaskID("task", *task).
		Validate(); err != nil {
		return err
	}
	content, err := readText(e, fs.Arg(0))
	if err != nil {
		return err
	}
	rec, err := e.client.Actions().SaveDraft(ctx, transcription.SaveRequest{
		Category: *category,
		Title:    *title,
		Content:  content,
		TaskID:   *task,
	})
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, rec)
	}
	fmt.Fprintf(e.out, "saved record %s\n", rec.ID)
	return nil
}

func runRecords(ctx context.Context, e *env, args []string) error {
	if err := parse(newFlags(e, "records"), args); err != nil {
		return err
	}
	recs, err := e.client.Records(ctx)
	if err != nil {
		return err
	}
	if e.json {
		return printJSON(e, recs)
	}
	tw := table(e, "ID", "CATEGORY", "TITLE", "TASK", "CREATED")
	for _, r := range recs {
		label := r.CategoryLabel
		if label == "" {
			label = r.Category
		}
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, label, preview(r.Title, 40), r.TaskID, created)
	}
	return tw.Flush()
}

// readText reads transcript text from path, or from stdin when path is "-".
func readText(e *env, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = e.in
	} else {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFound("file", path)
			}
			return "", errors.Internal(err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, maxTextSize+1))
	if err != nil {
		return "", errors.Internal(err)
	}
	if len(b) > maxTextSize {
		return "", errors.FileTooLarge(int64(len(b)), maxTextSize)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.InvalidInput("input", "text is empty")
	}
	return text, nil
}
