package model

import (
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/*
 * A form definition as known by the form builder platform.
 * Forms are pushed to us by the platform, either through the catalogue hook or
 * along with every submission, and only cached here so the admin page can list them.
 */
type Form struct {
	ID            int                `gorm:"primarykey;autoIncrement:false" mapstructure:"id"`
	Title         string             `gorm:"size:255;not null" mapstructure:"title"`
	Notifications []FormNotification `gorm:"type:text;serializer:json" mapstructure:"notifications"`
	Fields        []FormField        `gorm:"type:text;serializer:json" mapstructure:"fields"`

	DBTime
}

// FormNotification is one message template configured on a form.
// Every template is sent, whatever the platform's own active flag says.
type FormNotification struct {
	Name    string `json:"name" mapstructure:"name"`
	Message string `json:"message" mapstructure:"message"`
}

// FormField maps an input id ("1", "1.3") to its label
type FormField struct {
	ID     string      `json:"id" mapstructure:"id"`
	Label  string      `json:"label" mapstructure:"label"`
	Inputs []FormField `json:"inputs,omitempty" mapstructure:"inputs"`
}

// Entry is a single submission: field id to submitted value, plus the
// platform's meta keys such as "id" and "date_created"
type Entry map[string]string

// DecodeForm converts the loosely typed JSON the platform sends into a Form.
// Ids may arrive as strings or numbers and notifications may be an object keyed by notification id.
func DecodeForm(raw interface{}) (*Form, error) {
	form := &Form{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       keyedObjectToSlice,
		Result:           form,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "illegal form definition")
	}
	if form.ID <= 0 {
		return nil, errors.New("form id must be a positive integer")
	}
	return form, nil
}

// DecodeEntry flattens the submitted entry into strings
func DecodeEntry(raw interface{}) (Entry, error) {
	entry := Entry{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &entry,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "illegal entry")
	}
	return entry, nil
}

// PHP serializes associative arrays as objects, so a list of notifications
// may arrive as {"5f1a...": {...}}. Values are taken in key order.
func keyedObjectToSlice(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Map || to.Kind() != reflect.Slice {
		return data, nil
	}
	object, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		values = append(values, object[key])
	}
	return values, nil
}

// SaveForms upserts form definitions by id
func SaveForms(db *gorm.DB, forms ...*Form) error {
	if len(forms) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "notifications", "fields", "updated_at"}),
	}).Create(forms).Error
}

// ListForms returns every known form ordered by id
func ListForms(db *gorm.DB) ([]*Form, error) {
	var forms []*Form
	err := db.Order("id").Find(&forms).Error
	return forms, err
}

// FindForm returns nil without error when the form is unknown
func FindForm(db *gorm.DB, id int) (*Form, error) {
	form := &Form{}
	if err := db.First(form, id).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return form, nil
}

// FieldLabels indexes every field and sub-input label by input id
func (form *Form) FieldLabels() map[string]string {
	labels := make(map[string]string)
	for _, field := range form.Fields {
		labels[field.ID] = field.Label
		for _, input := range field.Inputs {
			labels[input.ID] = input.Label
		}
	}
	return labels
}
