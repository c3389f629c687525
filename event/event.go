package event

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Event is one immutable unit of the incoming stream: the raw `type` string
// plus the full JSON payload. Accessors read kind specific fields lazily.
type Event struct {
	Type string
	Raw  string
}

// New builds an Event from a raw JSON payload, reading its `type` field.
func New(raw string) Event {
	return Event{Type: gjson.Get(raw, "type").String(), Raw: raw}
}

func (e Event) get(path string) gjson.Result { return gjson.Get(e.Raw, path) }

// ResponseID returns the server issued response id carried by lifecycle events.
func (e Event) ResponseID() string { return e.get("response.id").String() }

// Response returns the raw JSON of the embedded response object.
func (e Event) Response() string { return e.get("response").Raw }

// Delta returns the text delta of *.delta events.
func (e Event) Delta() string { return e.get("delta").String() }

// Text returns the final text of *.done events.
func (e Event) Text() string { return e.get("text").String() }

// ItemID returns the id of the output item carried by output_item events.
func (e Event) ItemID() string { return e.get("item.id").String() }

// Item returns the raw JSON of the output item.
func (e Event) Item() string { return e.get("item").Raw }

// ItemType returns the type of the output item.
func (e Event) ItemType() string { return e.get("item.type").String() }

// ErrorCode returns the error code of error events and failed responses.
func (e Event) ErrorCode() string {
	if c := e.get("code"); c.Exists() && c.String() != "" {
		return c.String()
	}
	return e.get("response.error.code").String()
}

// ErrorMessage returns the error message of error events and failed responses.
func (e Event) ErrorMessage() string {
	if m := e.get("message"); m.Exists() && m.String() != "" {
		return m.String()
	}
	return e.get("response.error.message").String()
}

// Annotation is a citation attached to output text.
type Annotation struct {
	Type       string
	Title      string
	URL        string
	StartIndex int64
	EndIndex   int64
	FileID     string
	Filename   string
	Index      int64
}

// HasURL reports whether the annotation cites a web page.
func (a Annotation) HasURL() bool { return strings.TrimSpace(a.URL) != "" }

// HasFile reports whether the annotation cites an uploaded file.
func (a Annotation) HasFile() bool { return strings.TrimSpace(a.FileID) != "" }

// Annotation decodes the annotation of an output_text.annotation.added event.
func (e Event) Annotation() Annotation {
	a := e.get("annotation")
	return Annotation{
		Type:       a.Get("type").String(),
		Title:      a.Get("title").String(),
		URL:        a.Get("url").String(),
		StartIndex: a.Get("start_index").Int(),
		EndIndex:   a.Get("end_index").Int(),
		FileID:     a.Get("file_id").String(),
		Filename:   a.Get("filename").String(),
		Index:      a.Get("index").Int(),
	}
}
