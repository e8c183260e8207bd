package models

import "time"

// Specialties accepted for a doctor profile.
var Specialties = []string{
	"General Physician",
	"Cardiologist",
	"Dermatologist",
	"Endocrinologist",
	"Gastroenterologist",
	"Neurologist",
	"Oncologist",
	"Orthopedist",
	"Pediatrician",
	"Psychiatrist",
	"Pulmonologist",
}

func IsValidSpecialty(s string) bool {
	for _, sp := range Specialties {
		if sp == s {
			return true
		}
	}
	return false
}

type Doctor struct {
	DoctorID        uint    `json:"id" gorm:"primaryKey"`
	Name            string  `json:"name" gorm:"not null"`
	Email           string  `json:"email" gorm:"uniqueIndex;not null"`
	Password        string  `json:"-" gorm:"not null"`
	Specialty       string  `json:"specialty" gorm:"not null"`
	License         string  `json:"license" gorm:"uniqueIndex;not null"`
	Hospital        string  `json:"hospital,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Experience      int     `json:"experience"`
	Qualification   string  `json:"qualification,omitempty"`
	ConsultationFee float64 `json:"consultationFee"`

	Availability []DoctorAvailability `json:"availability" gorm:"foreignKey:DoctorID"`
	Reviews      []Review             `json:"reviews,omitempty" gorm:"foreignKey:DoctorID"`

	// Rating is always the arithmetic mean of the review ratings. It is
	// recomputed on every review insert and never written directly.
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"totalReviews"`

	Verified bool `json:"verified"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// DoctorAvailability is one weekday of a doctor's weekly schedule.
type DoctorAvailability struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	DoctorID uint       `json:"-" gorm:"index"`
	Day      string     `json:"day"`
	Slots    []TimeSlot `json:"slots" gorm:"foreignKey:AvailabilityID"`
}

type TimeSlot struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	AvailabilityID  uint   `json:"-" gorm:"index"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	IsAvailable     bool   `json:"isAvailable"`
	MaxAppointments int    `json:"maxAppointments"`
}

type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DoctorID  uint      `json:"-" gorm:"index"`
	PatientID uint      `json:"patientId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (d *Doctor) AccountID() uint          { return d.DoctorID }
func (d *Doctor) AccountRole() string      { return RoleDoctor }
func (d *Doctor) AccountName() string      { return d.Name }
func (d *Doctor) AccountEmail() string     { return d.Email }
func (d *Doctor) PasswordHash() string     { return d.Password }
func (d *Doctor) SetPasswordHash(h string) { d.Password = h }
func (d *Doctor) Sanitize()                { d.Password = "" }

// RecomputeRating sets Rating to the mean of the given review ratings and
// TotalReviews to their count.
func (d *Doctor) RecomputeRating(reviews []Review) {
	d.TotalReviews = len(reviews)
	if len(reviews) == 0 {
		d.Rating = 0
		return
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	d.Rating = float64(sum) / float64(len(reviews))
}
