package model

import "time"

// ReloadEvent MySQL model for model_reload_events table
type ReloadEvent struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID              string          `gorm:"column:event_id;type:varchar(64);not null;uniqueIndex:idx_event_id_unique" json:"event_id"`
	Host                 string          `gorm:"column:host;type:varchar(255);not null;index:idx_host_loaded_at,priority:1" json:"host"`
	Location             string          `gorm:"column:location;type:varchar(1024);not null" json:"location"`
	ModelKind            string          `gorm:"column:model_kind;type:varchar(128);not null" json:"model_kind"`
	TrainingTime         string          `gorm:"column:training_time;type:varchar(64);not null" json:"training_time"`
	PreviousTrainingTime string          `gorm:"column:previous_training_time;type:varchar(64)" json:"previous_training_time,omitempty"`
	TrainedAt            time.Time       `gorm:"column:trained_at;type:datetime(6);not null" json:"trained_at"`
	FeatureNames         JSONStringArray `gorm:"column:feature_names;type:json" json:"feature_names"`
	Checksum             string          `gorm:"column:checksum;type:varchar(64)" json:"checksum"`
	LoadedAt             time.Time       `gorm:"column:loaded_at;type:datetime(3);not null;autoCreateTime;index:idx_host_loaded_at,priority:2" json:"loaded_at"`
}

// TableName specifies the table name for ReloadEvent
func (ReloadEvent) TableName() string {
	return "model_reload_events"
}
