package storage

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	SchemeLocal = "file"
	SchemeS3    = "s3"
)

// Location is a parsed input reference.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

// Name returns the last path element, used as the upload file name.
func (l Location) Name() string {
	return path.Base(strings.ReplaceAll(l.Key, "\\", "/"))
}

func (l Location) String() string {
	if l.Scheme == SchemeS3 {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// ParseLocation accepts "s3://bucket/key", "file:///path" and plain paths.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("storage: empty location")
	}
	switch {
	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("storage: parse %q: %w", raw, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("storage: %q must be s3://bucket/key", raw)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Key: key}, nil
	case strings.HasPrefix(raw, "file://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("storage: parse %q: %w", raw, err)
		}
		if u.Path == "" {
			return Location{}, fmt.Errorf("storage: %q has no path", raw)
		}
		return Location{Scheme: SchemeLocal, Key: u.Path}, nil
	default:
		return Location{Scheme: SchemeLocal, Key: raw}, nil
	}
}
