package diag

import (
	"encoding/json"
	"io"

	"github.com/standardbeagle/mylang-front/internal/source"
)

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonDiagnostic struct {
	ID       ID            `json:"id"`
	Level    string        `json:"level"`
	Message  string        `json:"message"`
	Location *jsonLocation `json:"location"`
}

type jsonDocument struct {
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// JSONConsumer buffers diagnostics for the current source file and emits
// one JSON document per BeginSourceFile/EndSourceFile pair:
// {"diagnostics":[ {id, level, message, location:{file,line,column}|null}, … ]}.
type JSONConsumer struct {
	w   io.Writer
	sm  *source.SourceManager
	doc jsonDocument
}

// NewJSONConsumer writes to w, resolving locations through sm (which may
// be nil, producing a null location for every diagnostic).
func NewJSONConsumer(w io.Writer, sm *source.SourceManager) *JSONConsumer {
	return &JSONConsumer{w: w, sm: sm}
}

func (j *JSONConsumer) BeginSourceFile(path string) {
	j.doc = jsonDocument{}
}

func (j *JSONConsumer) Handle(d Diagnostic) {
	entry := jsonDiagnostic{
		ID:      d.ID,
		Level:   d.Level.String(),
		Message: d.Message(),
	}
	if j.sm != nil && d.Location.IsValid() {
		if fid := j.sm.FileID(d.Location); fid.IsValid() {
			line, col := j.sm.LineAndColumn(d.Location)
			entry.Location = &jsonLocation{
				File:   j.sm.Filename(d.Location),
				Line:   line,
				Column: col,
			}
		}
	}
	j.doc.Diagnostics = append(j.doc.Diagnostics, entry)
}

func (j *JSONConsumer) EndSourceFile() {
	enc := json.NewEncoder(j.w)
	enc.Encode(j.doc)
	j.doc = jsonDocument{}
}

func (j *JSONConsumer) Finish() {}
