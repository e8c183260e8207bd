package models

import "time"

// Health record types.
var HealthRecordTypes = []string{
	"Lab Results",
	"Prescription",
	"Consultation Notes",
	"X-Ray",
	"MRI",
	"CT Scan",
	"Other",
}

func ValidHealthRecordType(t string) bool {
	for _, rt := range HealthRecordTypes {
		if rt == t {
			return true
		}
	}
	return false
}

type HealthRecord struct {
	RecordID    uint      `json:"id" gorm:"primaryKey"`
	PatientID   uint      `json:"patientId" gorm:"index:idx_records_patient_date;not null"`
	DoctorID    *uint     `json:"doctorId,omitempty"`
	Doctor      string    `json:"doctor,omitempty"` // display name, kept even if the doctor is external
	Title       string    `json:"title" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"index:idx_records_patient_date"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"fileUrl,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	FileSize    int64     `json:"fileSize,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
