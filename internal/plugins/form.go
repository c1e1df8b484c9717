package plugins

import (
	"strconv"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
)

type FieldType string

const (
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldDuration FieldType = "duration"
)

type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField describes one course settings control.
type FormField struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Type    FieldType     `json:"type"`
	Options []FieldOption `json:"options,omitempty"`
	Default string        `json:"default"`
	Group   string        `json:"group,omitempty"`
	Help    string        `json:"help,omitempty"`
}

type FormBuilder interface {
	AddField(field FormField)
}

// Form collects fields in the order they were added.
type Form struct {
	Fields []FormField `json:"fields"`
}

func (f *Form) AddField(field FormField) {
	f.Fields = append(f.Fields, field)
}

// Field looks up a field by name.
func (f *Form) Field(name string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FormField{}, false
}

var policyLabels = map[models.Policy]string{
	models.PolicyNothing:      "Do nothing",
	models.PolicyDelete:       "Delete existing attempts",
	models.PolicyExtraAttempt: "Give learner extra attempts",
}

// PolicyField builds the select control for an activity type policy.
func PolicyField(name, label string, policies []models.Policy) FormField {
	options := make([]FieldOption, 0, len(policies))
	for _, p := range policies {
		options = append(options, FieldOption{Value: strconv.Itoa(int(p)), Label: policyLabels[p]})
	}
	return FormField{
		Name:    name,
		Label:   label + " attempts",
		Type:    FieldSelect,
		Options: options,
		Default: strconv.Itoa(int(models.PolicyNothing)),
		Group:   name,
	}
}

// SettingsRegistry receives site default values.
type SettingsRegistry interface {
	Register(name, defaultValue string)
}

// Defaults is an in-memory SettingsRegistry; the first registration of a name wins.
type Defaults map[string]string

func (d Defaults) Register(name, defaultValue string) {
	if _, ok := d[name]; !ok {
		d[name] = defaultValue
	}
}
