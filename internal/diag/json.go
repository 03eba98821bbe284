package diag

import "encoding/json"

// jsonLocation mirrors the wire shape editor tooling consumes.
type jsonLocation struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column,omitempty"`
	SourceLine string `json:"source_line,omitempty"`
}

type jsonDiagnostic struct {
	Location *jsonLocation `json:"location,omitempty"`
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Help     string        `json:"help,omitempty"`
}

func (d Diagnostic) wire() jsonDiagnostic {
	out := jsonDiagnostic{
		Code:    string(d.Code),
		Title:   d.Title,
		Message: d.Message,
		Help:    d.Help,
	}
	if d.Span.IsValid() {
		out.Location = &jsonLocation{
			File:       d.Span.Filename,
			Line:       d.Span.Line,
			Column:     d.Span.Column,
			SourceLine: d.SourceLine,
		}
	}
	return out
}

// MarshalJSON serializes the diagnostic into the structured error shape.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

// ToJSON renders the diagnostic as compact JSON.
func (d Diagnostic) ToJSON() (string, error) {
	b, err := json.Marshal(d.wire())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPrettyJSON renders the diagnostic as indented JSON.
func (d Diagnostic) ToPrettyJSON() (string, error) {
	b, err := json.MarshalIndent(d.wire(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
