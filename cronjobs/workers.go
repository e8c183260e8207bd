package cronjobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"

	"vaidya/controllers"
	"vaidya/models"
)

// Maintenance runs the recurring background jobs: expiring stale
// prescriptions and reminding patients of appointments a few hours out.
type Maintenance struct {
	DB *gorm.DB
}

func NewMaintenance(db *gorm.DB) *Maintenance {
	return &Maintenance{DB: db}
}

// Start schedules the jobs and returns the running scheduler.
func (m *Maintenance) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Hour().Do(func() {
		if err := m.ExpirePrescriptions(); err != nil {
			log.Printf("Error expiring prescriptions: %v", err)
		}
	})

	scheduler.Every(15).Minutes().Do(func() {
		if err := m.SendAppointmentReminders(); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Maintenance jobs started")

	return scheduler
}

// ExpirePrescriptions marks active prescriptions past their validity window
// as expired.
func (m *Maintenance) ExpirePrescriptions() error {
	result := m.DB.Model(&models.Prescription{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", models.PrescriptionActive, time.Now()).
		Update("status", models.PrescriptionExpired)
	if result.Error != nil {
		return fmt.Errorf("failed to expire prescriptions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Expired %d prescriptions", result.RowsAffected)
	}
	return nil
}

// SendAppointmentReminders emails patients whose scheduled appointment falls
// roughly three hours from now.
func (m *Maintenance) SendAppointmentReminders() error {
	now := time.Now()
	startWindow := now.Add(2*time.Hour + 53*time.Minute)
	endWindow := now.Add(3*time.Hour + 7*time.Minute)

	var appointments []models.Appointment
	result := m.DB.
		Where("status = ? AND date >= ? AND date <= ?",
			models.StatusScheduled,
			startWindow.Truncate(24*time.Hour),
			endWindow).
		Find(&appointments)
	if result.Error != nil {
		return fmt.Errorf("failed to query upcoming appointments: %w", result.Error)
	}

	for _, appointment := range appointments {
		at, err := appointmentInstant(appointment)
		if err != nil {
			continue
		}
		if at.Before(startWindow) || at.After(endWindow) {
			continue
		}

		var patient models.Patient
		if err := m.DB.First(&patient, appointment.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for appointment ID %d: %v", appointment.AppointmentID, err)
			continue
		}
		if patient.Email == "" {
			continue
		}

		msg := fmt.Sprintf("Reminder: you have a %s appointment at %s today.", appointment.Type, appointment.Time)
		if appointment.MeetingLink != "" {
			msg += " Join here: " + appointment.MeetingLink
		}
		if err := controllers.SendReminderEmail(msg, patient.Email); err != nil {
			log.Printf("Failed to send reminder for appointment ID %d: %v", appointment.AppointmentID, err)
		}
	}
	return nil
}

// appointmentInstant combines the appointment date with its display time
// slot ("10:30 AM" or "15:04") into a single instant.
func appointmentInstant(apt models.Appointment) (time.Time, error) {
	for _, layout := range []string{"3:04 PM", "15:04"} {
		if t, err := time.Parse(layout, apt.Time); err == nil {
			d := apt.Date
			return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time slot %q", apt.Time)
}
