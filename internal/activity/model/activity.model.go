package model

import (
	"encoding/json"
	"fmt"
)

// Activity is a single todo record as stored in todos.json.
type Activity struct {
	ID          int     `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Done        bool    `json:"done"`
}

// Projection is the "{title} {id}" string returned by the list and search routes.
func (a Activity) Projection() string {
	return fmt.Sprintf("%s %d", deref(a.Title), a.ID)
}

// Clone returns a copy that shares no pointers with a.
func (a Activity) Clone() Activity {
	c := a
	c.Title = cloneString(a.Title)
	c.Description = cloneString(a.Description)
	c.DueDate = cloneString(a.DueDate)
	return c
}

func Projections(activities []Activity) []string {
	out := make([]string, 0, len(activities))
	for _, a := range activities {
		out = append(out, a.Projection())
	}
	return out
}

// ParseActivity decodes a request body into an Activity. The body must be a
// JSON object matching the activity schema; the id it carries is ignored by callers.
func ParseActivity(body []byte) (Activity, error) {
	if err := ValidateActivity(body); err != nil {
		return Activity{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	var a Activity
	if err := json.Unmarshal(body, &a); err != nil {
		return Activity{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return a, nil
}

// ParseActivities decodes the contents of a backing file. "null" and "[]" both
// yield an empty, non-nil slice.
func ParseActivities(data []byte) ([]Activity, error) {
	if err := ValidateActivities(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	var activities []Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if activities == nil {
		activities = []Activity{}
	}
	return activities, nil
}

// StringPtr is a small helper for building activities with optional fields.
func StringPtr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
