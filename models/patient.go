package models

import "time"

type Patient struct {
	PatientID   uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Age         int        `json:"age"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	BloodGroup  string     `json:"bloodGroup,omitempty"`

	EmergencyContact EmergencyContact `json:"emergencyContact" gorm:"embedded;embeddedPrefix:emergency_"`

	MedicalHistory     []MedicalHistory `json:"medicalHistory" gorm:"foreignKey:PatientID"`
	Allergies          []Allergy        `json:"allergies" gorm:"foreignKey:PatientID"`
	CurrentMedications []Medication     `json:"currentMedications" gorm:"foreignKey:PatientID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

type MedicalHistory struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	PatientID     uint       `json:"-" gorm:"index"`
	Condition     string     `json:"condition"`
	DiagnosedDate *time.Time `json:"diagnosedDate,omitempty"`
	Status        string     `json:"status"` // active | managed | resolved
}

type Allergy struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	PatientID uint   `json:"-" gorm:"index"`
	Allergen  string `json:"allergen"`
	Severity  string `json:"severity"` // mild | moderate | severe
}

type Medication struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	PatientID uint   `json:"-" gorm:"index"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

func (p *Patient) AccountID() uint          { return p.PatientID }
func (p *Patient) AccountRole() string      { return RolePatient }
func (p *Patient) AccountName() string      { return p.Name }
func (p *Patient) AccountEmail() string     { return p.Email }
func (p *Patient) PasswordHash() string     { return p.Password }
func (p *Patient) SetPasswordHash(h string) { p.Password = h }
func (p *Patient) Sanitize()                { p.Password = "" }

// DerivedAge refreshes Age from the date of birth when one is recorded.
// Called before serving the profile so the stored value never goes stale.
func (p *Patient) DerivedAge(now time.Time) int {
	if p.DateOfBirth == nil {
		return p.Age
	}
	return AgeFromDOB(*p.DateOfBirth, now)
}

// AgeFromDOB computes a calendar-aware age: one year is subtracted when the
// current month/day falls before the birth month/day.
func AgeFromDOB(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
