package workers

import (
	"encoding/json"
	"fmt"
)

// Content is the mutable payload of a task-list or task record. Name, when
// present, must match the record's key within its scope; renaming through a
// content update is rejected.
type Content struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	Date    string `json:"date,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (c Content) IsEmpty() bool {
	return c.Name == "" && c.Content == "" && c.Date == ""
}

// merge overlays the non-empty fields of in onto c. Absent input fields
// never clear stored ones (partial-update semantics).
func (c *Content) merge(in Content) {
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Content != "" {
		c.Content = in.Content
	}
	if in.Date != "" {
		c.Date = in.Date
	}
}

// encodeRecord serializes content to its persisted form.
func encodeRecord(c Content) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(data), nil
}

// decodeRecord deserializes a persisted record back into content.
func decodeRecord(value string) (Content, error) {
	var c Content
	if err := json.Unmarshal([]byte(value), &c); err != nil {
		return Content{}, fmt.Errorf("decode record: %w", err)
	}
	return c, nil
}
