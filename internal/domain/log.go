package domain

// LogEvent is a single logged event together with the vector timestamp the
// host attached to it.
type LogEvent struct {
	Text      string            `json:"text"`
	Host      string            `json:"host"`
	Timestamp VectorTimestamp   `json:"-"`
	Line      int               `json:"line"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// NewLogEvent builds an event for text on the timestamp's host. fields may be
// nil; the host field is always present.
func NewLogEvent(text string, ts VectorTimestamp, line int, fields map[string]string) LogEvent {
	f := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		f[k] = v
	}
	f["host"] = ts.Host()
	return LogEvent{
		Text:      text,
		Host:      ts.Host(),
		Timestamp: ts,
		Line:      line,
		Fields:    f,
	}
}

// LocalTime is the owning host's component of the event's clock.
func (e LogEvent) LocalTime() int {
	return e.Timestamp.OwnTime()
}

// Field looks up a field by name.
func (e LogEvent) Field(name string) (string, bool) {
	v, ok := e.Fields[name]
	return v, ok
}
