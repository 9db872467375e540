package models

// ChecklistItem is one onboarding step. The JSON shape matches the array the
// web client kept in local storage.
type ChecklistItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Category    string `json:"category"`
}

// Rank is one entry of the MC&D hierarchy.
type Rank struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Branch      string `json:"branch"`
	Clearance   int    `json:"clearance"`
	Description string `json:"description,omitempty"`
}

// FormatField is a named input of a format template.
type FormatField struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// FormatTemplate is a Discord message layout with {placeholder} fields.
type FormatTemplate struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Template    string        `json:"template"`
	Fields      []FormatField `json:"fields,omitempty"`
}

// Activity is one row of the point calculator table.
type Activity struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}
