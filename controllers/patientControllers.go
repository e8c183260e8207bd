package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vaidya/authentication"
	"vaidya/configuration"
	"vaidya/models"
)

// GetPatientProfile returns the caller's own profile without the password.
func GetPatientProfile(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var patient models.Patient
	err := configuration.DB.
		Preload("MedicalHistory").
		Preload("Allergies").
		Preload("CurrentMedications").
		First(&patient, patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
			return
		}
		serverError(c, err)
		return
	}

	patient.Age = patient.DerivedAge(time.Now())
	patient.Sanitize()
	c.JSON(http.StatusOK, patient)
}

// GetLatestVitals returns the four most recent vitals entries.
func GetLatestVitals(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var vitals []models.Vitals
	err := configuration.DB.
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(4).
		Find(&vitals).Error
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, vitals)
}

// AddVitals records a new vitals reading for the caller.
func AddVitals(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var vitals models.Vitals
	if err := c.ShouldBindJSON(&vitals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if vitals.Label == "" || vitals.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label and value are required"})
		return
	}

	vitals.VitalsID = 0
	vitals.PatientID = patientID
	if vitals.Status == "" {
		vitals.Status = "normal"
	}
	if vitals.RecordedBy == "" {
		vitals.RecordedBy = models.RolePatient
	}

	if err := configuration.DB.Create(&vitals).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vitals)
}

// GetUpcomingAppointment returns the next scheduled appointment, or null.
func GetUpcomingAppointment(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var appointment models.Appointment
	err := configuration.DB.
		Where("patient_id = ? AND date >= ? AND status = ?", patientID, startOfDay(time.Now()), models.StatusScheduled).
		Order("date ASC").
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		serverError(c, err)
		return
	}

	doctors := doctorsByID([]models.Appointment{appointment})
	doc := doctors[appointment.DoctorID]

	c.JSON(http.StatusOK, gin.H{
		"id":          appointment.AppointmentID,
		"doctor":      doctorName(doc),
		"specialty":   doctorSpecialty(doc),
		"date":        appointment.Date,
		"time":        appointment.Time,
		"type":        appointment.Type,
		"meetingLink": appointment.MeetingLink,
	})
}

// GetPatientAppointments lists every appointment of the caller, newest first.
func GetPatientAppointments(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var appointments []models.Appointment
	err := configuration.DB.
		Where("patient_id = ?", patientID).
		Order("date DESC").
		Find(&appointments).Error
	if err != nil {
		serverError(c, err)
		return
	}

	doctors := doctorsByID(appointments)
	formatted := make([]gin.H, 0, len(appointments))
	for _, apt := range appointments {
		doc := doctors[apt.DoctorID]
		formatted = append(formatted, gin.H{
			"id":         apt.AppointmentID,
			"doctorName": doctorName(doc),
			"specialty":  doctorSpecialty(doc),
			"date":       apt.Date,
			"time":       apt.Time,
			"status":     apt.Status,
			"type":       apt.Type,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

type bookAppointmentRequest struct {
	DoctorID    uint     `json:"doctorId" binding:"required"`
	Date        string   `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string   `json:"time" binding:"required"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Symptoms    []string `json:"symptoms"`
	Notes       string   `json:"notes"`
	MeetingLink string   `json:"meetingLink"`
	Duration    int      `json:"duration"`
}

// BookAppointment creates a new appointment for the caller. Video
// consultations without a meeting link get a generated one.
func BookAppointment(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var req bookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	if req.Type == "" {
		req.Type = models.TypeVideoConsultation
	}
	if !models.ValidAppointmentType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment type"})
		return
	}

	// Both references must resolve to existing users.
	var doctor models.Doctor
	if err := configuration.DB.First(&doctor, req.DoctorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
		return
	}

	appointment := models.Appointment{
		PatientID:   patientID,
		DoctorID:    req.DoctorID,
		Date:        date,
		Time:        req.Time,
		Type:        req.Type,
		Status:      models.StatusScheduled,
		Priority:    req.Priority,
		Symptoms:    req.Symptoms,
		Notes:       req.Notes,
		MeetingLink: req.MeetingLink,
		Duration:    req.Duration,
	}
	if appointment.Priority == "" {
		appointment.Priority = "normal"
	}
	if appointment.Duration == 0 {
		appointment.Duration = 30
	}
	if appointment.Type == models.TypeVideoConsultation && appointment.MeetingLink == "" {
		appointment.MeetingLink = generateMeetingLink()
	}

	if err := configuration.DB.Create(&appointment).Error; err != nil {
		serverError(c, err)
		return
	}

	invalidateAvailabilityCache(appointment.DoctorID)
	c.JSON(http.StatusCreated, appointment)
}

// CancelPatientAppointment marks one of the caller's appointments cancelled.
func CancelPatientAppointment(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)
	appointmentID := c.Param("id")

	var appointment models.Appointment
	err := configuration.DB.
		Where("appointment_id = ? AND patient_id = ?", appointmentID, patientID).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		serverError(c, err)
		return
	}

	if err := configuration.DB.Model(&appointment).Update("status", models.StatusCancelled).Error; err != nil {
		serverError(c, err)
		return
	}

	invalidateAvailabilityCache(appointment.DoctorID)
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}

// GetRecentRecords returns the five most recent health records.
func GetRecentRecords(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var records []models.HealthRecord
	err := configuration.DB.
		Where("patient_id = ?", patientID).
		Order("date DESC").
		Limit(5).
		Find(&records).Error
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetRecords returns every health record of the caller, newest first.
func GetRecords(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var records []models.HealthRecord
	err := configuration.DB.
		Where("patient_id = ?", patientID).
		Order("date DESC").
		Find(&records).Error
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// AddRecord stores a new health record for the caller.
func AddRecord(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var record models.HealthRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if record.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if !models.ValidHealthRecordType(record.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record type"})
		return
	}

	record.RecordID = 0
	record.PatientID = patientID
	if record.Date.IsZero() {
		record.Date = time.Now()
	}

	if err := configuration.DB.Create(&record).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetPatientConsultations lists completed appointments with doctor details.
func GetPatientConsultations(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var consultations []models.Appointment
	err := configuration.DB.
		Where("patient_id = ? AND status = ?", patientID, models.StatusCompleted).
		Order("date DESC").
		Find(&consultations).Error
	if err != nil {
		serverError(c, err)
		return
	}

	doctors := doctorsByID(consultations)
	formatted := make([]gin.H, 0, len(consultations))
	for _, con := range consultations {
		doc := doctors[con.DoctorID]
		formatted = append(formatted, gin.H{
			"id":         con.AppointmentID,
			"doctorName": doctorName(doc),
			"specialty":  doctorSpecialty(doc),
			"date":       con.Date,
			"time":       con.Time,
			"status":     con.Status,
			"duration":   con.Duration,
			"notes":      con.Notes,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetPatientPrescriptions lists the caller's prescriptions with medications.
func GetPatientPrescriptions(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)

	var prescriptions []models.Prescription
	err := configuration.DB.
		Preload("Medications").
		Where("patient_id = ?", patientID).
		Order("date DESC").
		Find(&prescriptions).Error
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescriptions)
}

// doctorsByID batch-loads the doctors referenced by a set of appointments.
func doctorsByID(appointments []models.Appointment) map[uint]*models.Doctor {
	ids := make([]uint, 0, len(appointments))
	seen := make(map[uint]bool)
	for _, apt := range appointments {
		if !seen[apt.DoctorID] {
			seen[apt.DoctorID] = true
			ids = append(ids, apt.DoctorID)
		}
	}
	result := make(map[uint]*models.Doctor, len(ids))
	if len(ids) == 0 {
		return result
	}
	var doctors []models.Doctor
	if err := configuration.DB.Where("doctor_id IN ?", ids).Find(&doctors).Error; err != nil {
		return result
	}
	for i := range doctors {
		result[doctors[i].DoctorID] = &doctors[i]
	}
	return result
}

func doctorName(d *models.Doctor) string {
	if d == nil {
		return "Unknown Doctor"
	}
	return d.Name
}

func doctorSpecialty(d *models.Doctor) string {
	if d == nil {
		return ""
	}
	return d.Specialty
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
