package colt

import "encoding/json"

// NoPosition marks a log message that is not tied to a source location.
const NoPosition = -1

// LogMessage is one line of COLT output.
type LogMessage struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	FilePath string `json:"filePath"`
}

// UnmarshalJSON decodes a log message. A missing or null position
// decodes as NoPosition.
func (m *LogMessage) UnmarshalJSON(data []byte) error {
	type plain LogMessage
	var raw struct {
		plain
		Position *int `json:"position"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = LogMessage(raw.plain)
	m.Position = NoPosition
	if raw.Position != nil {
		m.Position = *raw.Position
	}
	return nil
}

// Located reports whether the message points into a source file.
func (m LogMessage) Located() bool {
	return m.Position >= 0
}

// IsReload reports whether the message is the "file reloaded" signal:
// a located message with no text.
func (m LogMessage) IsReload() bool {
	return m.Located() && m.Message == ""
}

// RuntimeError is the last uncaught error COLT observed in the page.
type RuntimeError struct {
	Position     int    `json:"position"`
	Row          int    `json:"row"`
	FilePath     string `json:"filePath"`
	ErrorMessage string `json:"errorMessage"`
}

// AsLogMessage returns the error as a located log message.
func (e RuntimeError) AsLogMessage() LogMessage {
	return LogMessage{
		Message:  e.ErrorMessage,
		Position: e.Position,
		FilePath: e.FilePath,
	}
}

// MethodCount is how often the function at a location has been called.
type MethodCount struct {
	Count    int    `json:"count"`
	Position int    `json:"position"`
	FilePath string `json:"filePath"`
}

// Declaration is the location of a symbol's declaration.
type Declaration struct {
	FilePath string
	Position int
}

// ContextKind selects what GetContextForPosition returns.
type ContextKind string

// ContextProperties asks for the properties of the expression before a dot.
const ContextProperties ContextKind = "PROPERTIES"
