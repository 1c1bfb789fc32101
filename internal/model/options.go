package model

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptionsName is the key the plugin options are stored under
const OptionsName = "telegram_notifier_options"

// Option is a single named settings blob, the same shape as a WordPress option row
type Option struct {
	Name  string         `gorm:"primarykey;size:191"`
	Value datatypes.JSON `gorm:"not null"`

	DBTime
}

// PluginOptions is the whole configuration of the notifier.
// BotKey is nil until a valid token has been saved through the settings form.
type PluginOptions struct {
	BotKey *string `json:"bot_key"`
	GFList []int   `json:"gf_list"`
}

// DefaultOptions returns the options used before anything has been saved
func DefaultOptions() *PluginOptions {
	return &PluginOptions{
		BotKey: nil,
		GFList: []int{},
	}
}

// HasForm reports whether notifications are enabled for the form
func (options *PluginOptions) HasForm(formID int) bool {
	for _, id := range options.GFList {
		if id == formID {
			return true
		}
	}
	return false
}

// AddForm appends the form without checking for duplicates
func (options *PluginOptions) AddForm(formID int) {
	options.GFList = append(options.GFList, formID)
}

// RemoveForm drops the first occurrence of the form and reports whether one was found
func (options *PluginOptions) RemoveForm(formID int) bool {
	for i, id := range options.GFList {
		if id == formID {
			options.GFList = append(options.GFList[:i:i], options.GFList[i+1:]...)
			return true
		}
	}
	return false
}

// GetOptions loads the stored options, falling back to defaults
func GetOptions(db *gorm.DB) (*PluginOptions, error) {
	option := &Option{}
	if err := db.Where("name = ?", OptionsName).First(option).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultOptions(), nil
	} else if err != nil {
		return nil, err
	}
	options := DefaultOptions()
	if err := json.Unmarshal(option.Value, options); err != nil {
		return nil, err
	}
	if options.GFList == nil {
		options.GFList = []int{}
	}
	return options, nil
}

// SetOptions stores options as they are, no validation happens here
func SetOptions(db *gorm.DB, options *PluginOptions) error {
	value, err := json.Marshal(options)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Option{Name: OptionsName, Value: value}).Error
}

// DeleteOptions removes the stored options if the options table exists
func DeleteOptions(db *gorm.DB) error {
	if !db.Migrator().HasTable(&Option{}) {
		return nil
	}
	return db.Where("name = ?", OptionsName).Delete(&Option{}).Error
}
