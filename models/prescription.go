package models

import "time"

// Prescription statuses.
const (
	PrescriptionActive    = "active"
	PrescriptionExpired   = "expired"
	PrescriptionCancelled = "cancelled"
)

type Prescription struct {
	PrescriptionID uint             `json:"id" gorm:"primaryKey"`
	PatientID      uint             `json:"patientId" gorm:"index;not null"`
	DoctorID       uint             `json:"doctorId" gorm:"index;not null"`
	AppointmentID  *uint            `json:"appointmentId,omitempty"`
	Medications    []MedicationItem `json:"medications" gorm:"foreignKey:PrescriptionID"`
	Diagnosis      string           `json:"diagnosis,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Date           time.Time        `json:"date"`
	ValidUntil     *time.Time       `json:"validUntil,omitempty"`
	Status         string           `json:"status" gorm:"default:'active'"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// MedicationItem is one line of a prescription. Name, dosage, frequency and
// duration are mandatory; instructions are free text.
type MedicationItem struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	PrescriptionID uint   `json:"-" gorm:"index"`
	Name           string `json:"name" validate:"required"`
	Dosage         string `json:"dosage" validate:"required"`
	Frequency      string `json:"frequency" validate:"required"`
	Duration       string `json:"duration" validate:"required"`
	Instructions   string `json:"instructions,omitempty"`
}
