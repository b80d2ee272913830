package model

// FieldType tags the control kind of a category field. Rendering and
// validation dispatch on this tag rather than on the category.
type FieldType string

const (
	FieldSelect       FieldType = "SELECT"
	FieldMultiSelect  FieldType = "MULTI_SELECT"
	FieldNumber       FieldType = "NUMBER"
	FieldRange        FieldType = "RANGE"
	FieldCheckbox     FieldType = "CHECKBOX"
	FieldRadio        FieldType = "RADIO"
	FieldColorPicker  FieldType = "COLOR_PICKER"
	FieldSizeSelector FieldType = "SIZE_SELECTOR"
)

// IsNumeric reports whether the field expands into min/max filter keys.
func (t FieldType) IsNumeric() bool {
	return t == FieldNumber || t == FieldRange
}

// FieldOption is a selectable value for SELECT-like fields.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldValidation bounds numeric fields. Step is the UI increment.
type FieldValidation struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
}

// FieldSchema declares one form/filter field for a listing category.
// A field with DependsOn must not be enabled until the referenced field has
// a value, and a change to that value clears this field.
type FieldSchema struct {
	ID         string           `json:"id"`
	Label      string           `json:"label"`
	Type       FieldType        `json:"type"`
	Options    []FieldOption    `json:"options,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	DependsOn  string           `json:"depends_on,omitempty"`
	Validation *FieldValidation `json:"validation,omitempty"`
}
