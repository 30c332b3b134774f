package models

import "time"

type Setting struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:100"`
	Value     string `gorm:"column:setting_value;type:text"`
	UpdatedAt time.Time
}
