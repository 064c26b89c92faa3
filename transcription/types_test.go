package transcription

import (
	"strings"
	"testing"
)

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		pending  bool
	}{
		{StatusQueued, false, true},
		{StatusProcessing, false, true},
		{StatusCompleted, true, false},
		{StatusError, true, false},
		{StatusNotFound, false, false},
		{Status("weird"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.IsPending(); got != tt.pending {
				t.Errorf("IsPending() = %v, want %v", got, tt.pending)
			}
		})
	}
}

func TestResultText(t *testing.T) {
	var nilResult *Result
	if nilResult.Text() != "" {
		t.Error("nil result should have empty text")
	}
	r := &Result{RawText: "raw"}
	if r.Text() != "raw" {
		t.Errorf("Text() = %q, want raw", r.Text())
	}
	r.CorrectedText = "fixed"
	if r.Text() != "fixed" {
		t.Errorf("Text() = %q, want fixed", r.Text())
	}
}

func TestSubmissionIsQueued(t *testing.T) {
	var nilSub *Submission
	if nilSub.IsQueued() {
		t.Error("nil submission is not queued")
	}
	if !(&Submission{Status: StatusQueued, TaskID: "t1"}).IsQueued() {
		t.Error("queued submission with task id should be queued")
	}
	if (&Submission{Status: StatusCompleted, TaskID: "t1", Result: &Result{}}).IsQueued() {
		t.Error("submission with result is not queued")
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.mp3":     "audio/mpeg",
		"B.WAV":     "audio/wav",
		"talk.m4a":  "audio/mp4",
		"clip.webm": "audio/webm",
		"notes.txt": "application/octet-stream",
		"noext":     "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentTypeFor(name); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
	if !IsAudioFile("x.FLAC") || IsAudioFile("x.pdf") {
		t.Error("IsAudioFile mismatch")
	}
}

func TestRequestWithDefaults(t *testing.T) {
	r := Request{File: strings.NewReader("x"), FileName: "a.mp3"}.WithDefaults()
	if r.Language != LanguageKorean || r.ContentType != ContentSermon {
		t.Errorf("defaults = %q/%q", r.Language, r.ContentType)
	}
	r = Request{Language: LanguageEnglish, ContentType: ContentPhoneCall}.WithDefaults()
	if r.Language != LanguageEnglish || r.ContentType != ContentPhoneCall {
		t.Errorf("explicit values overwritten: %q/%q", r.Language, r.ContentType)
	}
}

func TestContentTypeLabel(t *testing.T) {
	for _, c := range ContentTypes {
		if c.Label() == "" || c.Label() == string(c) {
			t.Errorf("%q has no label", c)
		}
	}
	if ContentType("x").Label() != "x" {
		t.Error("unknown content type should label as itself")
	}
}
