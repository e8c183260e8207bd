package models

import "time"

// Appointment types.
const (
	TypeVideoConsultation = "Video Consultation"
	TypeInPerson          = "In-Person"
	TypeFollowUp          = "Follow-up"
	TypeInitial           = "Initial"
)

// Appointment statuses.
const (
	StatusScheduled   = "scheduled"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusBlocked     = "blocked"
)

type Appointment struct {
	AppointmentID  uint      `json:"id" gorm:"primaryKey"`
	PatientID      uint      `json:"patientId" gorm:"index;not null"`
	DoctorID       uint      `json:"doctorId" gorm:"index;not null"`
	Date           time.Time `json:"date" gorm:"not null"`
	Time           string    `json:"time" gorm:"not null"`
	Type           string    `json:"type" gorm:"default:'Video Consultation'"`
	Status         string    `json:"status" gorm:"default:'scheduled'"`
	Priority       string    `json:"priority" gorm:"default:'normal'"`
	Symptoms       []string  `json:"symptoms,omitempty" gorm:"serializer:json"`
	Notes          string    `json:"notes,omitempty"`
	MeetingLink    string    `json:"meetingLink,omitempty"`
	Duration       int       `json:"duration" gorm:"default:30"` // minutes
	PrescriptionID *uint     `json:"prescriptionId,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func ValidAppointmentType(t string) bool {
	switch t {
	case TypeVideoConsultation, TypeInPerson, TypeFollowUp, TypeInitial:
		return true
	}
	return false
}

func ValidAppointmentStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled, StatusBlocked:
		return true
	}
	return false
}
