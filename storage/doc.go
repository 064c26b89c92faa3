// Package storage reads transcription inputs from the local filesystem or
// S3. Provider packages register themselves with RegisterFactory:
//
//	import _ "github.com/kbukum/scribekit/storage/s3"
//
//	loc, _ := storage.ParseLocation("s3://media/sermons/2026-10-11.m4a")
//	src, key, err := storage.ForLocation(ctx, cfg.Storage, loc)
//	rc, err := src.Open(ctx, key)
package storage
