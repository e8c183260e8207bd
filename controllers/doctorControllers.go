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

// GetDoctorProfile returns the caller's own profile without the password.
func GetDoctorProfile(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var doctor models.Doctor
	err := configuration.DB.
		Preload("Availability.Slots").
		Preload("Availability").
		First(&doctor, doctorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		serverError(c, err)
		return
	}

	doctor.Sanitize()
	c.JSON(http.StatusOK, doctor)
}

// GetDoctorStats builds the dashboard cards: today's appointments, waiting
// patients, distinct patients and completed consultations.
func GetDoctorStats(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	today := startOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var todayCount, waitingCount, completedCount int64
	if err := configuration.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date >= ? AND date < ? AND status = ?", doctorID, today, tomorrow, models.StatusScheduled).
		Count(&todayCount).Error; err != nil {
		serverError(c, err)
		return
	}
	if err := configuration.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusScheduled).
		Count(&waitingCount).Error; err != nil {
		serverError(c, err)
		return
	}
	if err := configuration.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusCompleted).
		Count(&completedCount).Error; err != nil {
		serverError(c, err)
		return
	}

	var patientIDs []uint
	if err := configuration.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Pluck("patient_id", &patientIDs).Error; err != nil {
		serverError(c, err)
		return
	}

	stats := []gin.H{
		{"label": "Today's Appointments", "value": todayCount, "icon": "Calendar", "color": "text-primary"},
		{"label": "Waiting Patients", "value": waitingCount, "icon": "Clock", "color": "text-warning"},
		{"label": "Total Patients", "value": len(patientIDs), "icon": "Users", "color": "text-secondary"},
		{"label": "Consultations", "value": completedCount, "icon": "Video", "color": "text-success"},
	}
	c.JSON(http.StatusOK, stats)
}

// GetUpcomingConsultations returns today's scheduled appointments sorted by
// time slot.
func GetUpcomingConsultations(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	today := startOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var consultations []models.Appointment
	err := configuration.DB.
		Where("doctor_id = ? AND date >= ? AND date < ? AND status = ?", doctorID, today, tomorrow, models.StatusScheduled).
		Order("time ASC").
		Find(&consultations).Error
	if err != nil {
		serverError(c, err)
		return
	}

	patients := patientsByID(consultations)
	formatted := make([]gin.H, 0, len(consultations))
	for _, con := range consultations {
		formatted = append(formatted, gin.H{
			"id":        con.AppointmentID,
			"patient":   patientName(patients[con.PatientID]),
			"patientId": con.PatientID,
			"time":      con.Time,
			"type":      con.Type,
			"priority":  con.Priority,
			"duration":  con.Duration,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetRecentPatients lists the patients of the five most recent completed
// consultations with their leading condition.
func GetRecentPatients(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var recent []models.Appointment
	err := configuration.DB.
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusCompleted).
		Order("date DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		serverError(c, err)
		return
	}

	patients := patientsWithHistoryByID(recent)
	formatted := make([]gin.H, 0, len(recent))
	for _, apt := range recent {
		patient := patients[apt.PatientID]
		formatted = append(formatted, gin.H{
			"id":        apt.PatientID,
			"name":      patientName(patient),
			"lastVisit": apt.Date,
			"condition": leadingCondition(patient),
			"age":       patientAge(patient),
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetSchedule returns every non-cancelled appointment, soonest first.
func GetSchedule(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var schedule []models.Appointment
	err := configuration.DB.
		Where("doctor_id = ? AND status <> ?", doctorID, models.StatusCancelled).
		Order("date ASC, time ASC").
		Find(&schedule).Error
	if err != nil {
		serverError(c, err)
		return
	}

	patients := patientsByID(schedule)
	formatted := make([]gin.H, 0, len(schedule))
	for _, apt := range schedule {
		formatted = append(formatted, gin.H{
			"id":          apt.AppointmentID,
			"patientName": patientName(patients[apt.PatientID]),
			"patientId":   apt.PatientID,
			"date":        apt.Date,
			"time":        apt.Time,
			"type":        apt.Type,
			"status":      apt.Status,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetDoctorPatients lists the distinct patients this doctor has seen.
func GetDoctorPatients(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var patientIDs []uint
	err := configuration.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Pluck("patient_id", &patientIDs).Error
	if err != nil {
		serverError(c, err)
		return
	}

	var patients []models.Patient
	if len(patientIDs) > 0 {
		err = configuration.DB.
			Preload("MedicalHistory").
			Where("patient_id IN ?", patientIDs).
			Find(&patients).Error
		if err != nil {
			serverError(c, err)
			return
		}
	}

	formatted := make([]gin.H, 0, len(patients))
	for i := range patients {
		patient := &patients[i]
		formatted = append(formatted, gin.H{
			"id":        patient.PatientID,
			"name":      patient.Name,
			"age":       patient.DerivedAge(time.Now()),
			"condition": leadingCondition(patient),
			"phone":     patient.Phone,
			"email":     patient.Email,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetDoctorConsultations lists completed appointments, newest first.
func GetDoctorConsultations(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var consultations []models.Appointment
	err := configuration.DB.
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusCompleted).
		Order("date DESC").
		Find(&consultations).Error
	if err != nil {
		serverError(c, err)
		return
	}

	patients := patientsByID(consultations)
	formatted := make([]gin.H, 0, len(consultations))
	for _, con := range consultations {
		formatted = append(formatted, gin.H{
			"id":          con.AppointmentID,
			"patientName": patientName(patients[con.PatientID]),
			"patientId":   con.PatientID,
			"date":        con.Date,
			"time":        con.Time,
			"status":      con.Status,
			"duration":    con.Duration,
			"notes":       con.Notes,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// GetDoctorMessages returns the doctor's inbox. There is no messaging backend
// yet; the dashboard expects an empty list until there is.
func GetDoctorMessages(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{})
}

// SaveAvailability replaces the doctor's weekly availability.
func SaveAvailability(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var availability []models.DoctorAvailability
	if err := c.ShouldBindJSON(&availability); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := configuration.DB.Transaction(func(tx *gorm.DB) error {
		var old []models.DoctorAvailability
		if err := tx.Where("doctor_id = ?", doctorID).Find(&old).Error; err != nil {
			return err
		}
		for _, day := range old {
			if err := tx.Where("availability_id = ?", day.ID).Delete(&models.TimeSlot{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&models.DoctorAvailability{}).Error; err != nil {
			return err
		}
		for i := range availability {
			availability[i].ID = 0
			availability[i].DoctorID = doctorID
			for j := range availability[i].Slots {
				availability[i].Slots[j].ID = 0
				availability[i].Slots[j].AvailabilityID = 0
			}
			if err := tx.Create(&availability[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

type blockSlotRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Time string `json:"time" binding:"required"`
}

// BlockSlot reserves a slot in the doctor's own calendar so patients cannot
// book it.
func BlockSlot(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var req blockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	blocked := models.Appointment{
		DoctorID: doctorID,
		Date:     date,
		Time:     req.Time,
		Type:     "Blocked",
		Status:   models.StatusBlocked,
		Priority: "normal",
		Duration: 30,
	}
	if err := configuration.DB.Create(&blocked).Error; err != nil {
		serverError(c, err)
		return
	}

	invalidateAvailabilityCache(doctorID)
	c.JSON(http.StatusCreated, blocked)
}

type updateAppointmentRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
}

// UpdateAppointment lets the doctor reschedule or annotate an appointment
// they own.
func UpdateAppointment(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)
	appointmentID := c.Param("id")

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appointment models.Appointment
	err := configuration.DB.
		Where("appointment_id = ? AND doctor_id = ?", appointmentID, doctorID).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		serverError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		updates["date"] = date
		updates["status"] = models.StatusRescheduled
	}
	if req.Time != "" {
		updates["time"] = req.Time
	}
	if req.Type != "" {
		if !models.ValidAppointmentType(req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment type"})
			return
		}
		updates["type"] = req.Type
	}
	if req.Status != "" {
		if !models.ValidAppointmentStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment status"})
			return
		}
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := configuration.DB.Model(&appointment).Updates(updates).Error; err != nil {
			serverError(c, err)
			return
		}
		invalidateAvailabilityCache(doctorID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment updated successfully"})
}

// CancelDoctorAppointment cancels an appointment owned by the doctor.
func CancelDoctorAppointment(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)
	appointmentID := c.Param("id")

	result := configuration.DB.Model(&models.Appointment{}).
		Where("appointment_id = ? AND doctor_id = ?", appointmentID, doctorID).
		Update("status", models.StatusCancelled)
	if result.Error != nil {
		serverError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	invalidateAvailabilityCache(doctorID)
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}

// CompleteAppointment marks a consultation as done.
func CompleteAppointment(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)
	appointmentID := c.Param("id")

	result := configuration.DB.Model(&models.Appointment{}).
		Where("appointment_id = ? AND doctor_id = ?", appointmentID, doctorID).
		Update("status", models.StatusCompleted)
	if result.Error != nil {
		serverError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation marked as completed"})
}

// patientsByID batch-loads the patients referenced by a set of appointments.
func patientsByID(appointments []models.Appointment) map[uint]*models.Patient {
	return loadPatients(appointments, false)
}

func patientsWithHistoryByID(appointments []models.Appointment) map[uint]*models.Patient {
	return loadPatients(appointments, true)
}

func loadPatients(appointments []models.Appointment, withHistory bool) map[uint]*models.Patient {
	ids := make([]uint, 0, len(appointments))
	seen := make(map[uint]bool)
	for _, apt := range appointments {
		if apt.PatientID != 0 && !seen[apt.PatientID] {
			seen[apt.PatientID] = true
			ids = append(ids, apt.PatientID)
		}
	}
	result := make(map[uint]*models.Patient, len(ids))
	if len(ids) == 0 {
		return result
	}
	query := configuration.DB
	if withHistory {
		query = query.Preload("MedicalHistory")
	}
	var patients []models.Patient
	if err := query.Where("patient_id IN ?", ids).Find(&patients).Error; err != nil {
		return result
	}
	for i := range patients {
		result[patients[i].PatientID] = &patients[i]
	}
	return result
}

func patientName(p *models.Patient) string {
	if p == nil {
		return "Unknown Patient"
	}
	return p.Name
}

func patientAge(p *models.Patient) int {
	if p == nil {
		return 0
	}
	return p.DerivedAge(time.Now())
}

func leadingCondition(p *models.Patient) string {
	if p == nil || len(p.MedicalHistory) == 0 {
		return "N/A"
	}
	return p.MedicalHistory[0].Condition
}
