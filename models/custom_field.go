package models

import "encoding/json"

// CustomValue nimmt die beiden Wire-Formen eines Custom-Field-Werts auf:
// einzelner String oder Liste von Strings.
type CustomValue []string

// UnmarshalJSON akzeptiert sowohl `"wert"` als auch `["a","b"]`.
func (v *CustomValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = CustomValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*v = CustomValue(many)
	return nil
}

// CustomField repräsentiert ein institutionelles Zusatzfeld samt Einstellungen.
type CustomField struct {
	InternalID int64 `json:"-"`

	Name        string      `json:"name"`
	Value       CustomValue `json:"value,omitempty"`
	FieldType   *string     `json:"field_type,omitempty"`
	IsMandatory bool        `json:"is_mandatory"`
	IsMultiple  bool        `json:"is_multiple"`
	Default     *string     `json:"default,omitempty"`
	MaxLength   *int64      `json:"max_length,omitempty"`
	MinLength   *int64      `json:"min_length,omitempty"`
	Options     []string    `json:"options,omitempty"`
}
