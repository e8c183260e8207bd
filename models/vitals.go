package models

import "time"

type Vitals struct {
	VitalsID   uint   `json:"id" gorm:"primaryKey"`
	PatientID  uint   `json:"patientId" gorm:"index:idx_vitals_patient_created;not null"`
	Label      string `json:"label" gorm:"not null"` // e.g. "Heart Rate"
	Value      string `json:"value" gorm:"not null"`
	Status     string `json:"status" gorm:"default:'normal'"` // normal | warning | critical
	Unit       string `json:"unit,omitempty"`
	RecordedBy string `json:"recordedBy" gorm:"default:'patient'"` // patient | doctor | device
	DeviceID   string `json:"deviceId,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index:idx_vitals_patient_created"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
