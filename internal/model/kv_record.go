package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVRecord backs the postgres Store: one row per collection key.
type KVRecord struct {
	Key       string         `gorm:"column:key;primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb;not null" json:"value"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
