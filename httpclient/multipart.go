package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
)

// MultipartBody is a multipart/form-data body. It is streamed through a
// pipe, so file readers are consumed once and never buffered whole.
type MultipartBody struct {
	// Fields are written in order before any file.
	Fields []FormField
	Files  []FileField
	// Progress, when set, receives the cumulative number of file bytes sent.
	Progress func(sent int64)
}

// FormField is a plain form value.
type FormField struct {
	Name  string
	Value string
}

// FileField is a file part.
type FileField struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Reader      io.Reader
}

// AddField appends a form field and returns the body for chaining.
func (m *MultipartBody) AddField(name, value string) *MultipartBody {
	m.Fields = append(m.Fields, FormField{Name: name, Value: value})
	return m
}

// AddFile appends a file part and returns the body for chaining.
func (m *MultipartBody) AddFile(field, fileName, contentType string, r io.Reader) *MultipartBody {
	m.Files = append(m.Files, FileField{FieldName: field, FileName: fileName, ContentType: contentType, Reader: r})
	return m
}

// reader starts encoding into a pipe and returns its read side together
// with the Content-Type header value.
func (m *MultipartBody) reader() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(m.writeTo(w))
	}()
	return pr, w.FormDataContentType()
}

func (m *MultipartBody) writeTo(w *multipart.Writer) error {
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}

	var sent int64
	for _, f := range m.Files {
		if f.Reader == nil {
			return fmt.Errorf("multipart: file field %q has no reader", f.FieldName)
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.FieldName), escapeQuotes(f.FileName)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}

		var dst io.Writer = part
		if m.Progress != nil {
			dst = &progressWriter{w: part, sent: &sent, report: m.Progress}
		}
		if _, err := io.Copy(dst, f.Reader); err != nil {
			return err
		}
	}
	return w.Close()
}

type progressWriter struct {
	w      io.Writer
	sent   *int64
	report func(int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	*p.sent += int64(n)
	p.report(*p.sent)
	return n, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// encodeBody converts a Request body into a reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		rc, ct := v.reader()
		return rc, ct, nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain; charset=utf-8", nil
	case url.Values:
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
