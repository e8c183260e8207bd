package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"vaidya/authentication"
	"vaidya/configuration"
	"vaidya/models"
)

// GetDoctorPrescriptions lists the prescriptions this doctor has written,
// flattened to the dashboard shape with the first medication line.
func GetDoctorPrescriptions(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var prescriptions []models.Prescription
	err := configuration.DB.
		Preload("Medications").
		Where("doctor_id = ?", doctorID).
		Order("date DESC").
		Find(&prescriptions).Error
	if err != nil {
		serverError(c, err)
		return
	}

	patientIDs := make([]uint, 0, len(prescriptions))
	seen := make(map[uint]bool)
	for _, p := range prescriptions {
		if !seen[p.PatientID] {
			seen[p.PatientID] = true
			patientIDs = append(patientIDs, p.PatientID)
		}
	}
	names := make(map[uint]string, len(patientIDs))
	if len(patientIDs) > 0 {
		var patients []models.Patient
		if err := configuration.DB.Where("patient_id IN ?", patientIDs).Find(&patients).Error; err == nil {
			for _, p := range patients {
				names[p.PatientID] = p.Name
			}
		}
	}

	formatted := make([]gin.H, 0, len(prescriptions))
	for _, presc := range prescriptions {
		name := names[presc.PatientID]
		if name == "" {
			name = "Unknown Patient"
		}
		medication, dosage, duration := "N/A", "", ""
		if len(presc.Medications) > 0 {
			medication = presc.Medications[0].Name
			dosage = presc.Medications[0].Dosage
			duration = presc.Medications[0].Duration
		}
		formatted = append(formatted, gin.H{
			"id":          presc.PrescriptionID,
			"patientName": name,
			"patientId":   presc.PatientID,
			"medication":  medication,
			"dosage":      dosage,
			"date":        presc.Date,
			"duration":    duration,
			"status":      presc.Status,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

type createPrescriptionRequest struct {
	PatientID     uint                    `json:"patientId" binding:"required"`
	AppointmentID *uint                   `json:"appointmentId"`
	Medications   []models.MedicationItem `json:"medications" binding:"required"`
	Diagnosis     string                  `json:"diagnosis"`
	Notes         string                  `json:"notes"`
	ValidUntil    string                  `json:"validUntil"` // YYYY-MM-DD
}

// CreatePrescription stores a prescription, completes the linked
// appointment, and emails the patient a PDF copy.
func CreatePrescription(c *gin.Context) {
	doctorID, _ := authentication.CallerID(c)

	var req createPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Medications) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one medication is required"})
		return
	}
	for i := range req.Medications {
		if err := validate.Struct(&req.Medications[i]); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var doctor models.Doctor
	if err := configuration.DB.First(&doctor, doctorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid doctor ID"})
		return
	}

	var patient models.Patient
	if err := configuration.DB.First(&patient, req.PatientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid patient ID"})
		return
	}

	var appointment *models.Appointment
	if req.AppointmentID != nil {
		var apt models.Appointment
		err := configuration.DB.
			Where("appointment_id = ? AND doctor_id = ? AND patient_id = ?", *req.AppointmentID, doctorID, req.PatientID).
			First(&apt).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No appointment found for the doctor and patient"})
				return
			}
			serverError(c, err)
			return
		}
		if apt.Status == models.StatusCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Appointment has been cancelled"})
			return
		}
		appointment = &apt
	}

	prescription := models.Prescription{
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		AppointmentID: req.AppointmentID,
		Medications:   req.Medications,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
		Date:          time.Now(),
		Status:        models.PrescriptionActive,
	}
	if req.ValidUntil != "" {
		until, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid validUntil, expected YYYY-MM-DD"})
			return
		}
		prescription.ValidUntil = &until
	}

	if err := configuration.DB.Create(&prescription).Error; err != nil {
		serverError(c, err)
		return
	}

	if appointment != nil {
		updates := map[string]interface{}{
			"status":          models.StatusCompleted,
			"prescription_id": prescription.PrescriptionID,
		}
		if err := configuration.DB.Model(appointment).Updates(updates).Error; err != nil {
			serverError(c, err)
			return
		}
	}

	// Email delivery is best effort; the prescription is already on record.
	pdfDoc, err := GeneratePrescriptionPDF(&doctor, &patient, &prescription)
	if err != nil {
		log.Printf("prescription %d: PDF generation failed: %v", prescription.PrescriptionID, err)
	} else if err := SendPrescriptionEmail("Your prescription is attached.", patient.Email, "prescription.pdf", pdfDoc); err != nil {
		log.Printf("prescription %d: email to %s failed: %v", prescription.PrescriptionID, patient.Email, err)
	}

	c.JSON(http.StatusCreated, prescription)
}

// GeneratePrescriptionPDF renders a prescription document.
func GeneratePrescriptionPDF(doctor *models.Doctor, patient *models.Patient, prescription *models.Prescription) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Vaidya Prescription", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	addDetail(pdf, "Doctor:", doctor.Name, true)
	addDetail(pdf, "Specialty:", doctor.Specialty, false)

	pdf.SetY(pdf.GetY() + 6)
	addDetail(pdf, "Patient:", patient.Name, true)
	addDetail(pdf, "Age:", fmt.Sprintf("%d", patient.DerivedAge(time.Now())), false)

	pdf.SetY(pdf.GetY() + 6)
	addDetail(pdf, "Date:", prescription.Date.Format("2006-01-02"), true)
	if prescription.Diagnosis != "" {
		addDetail(pdf, "Diagnosis:", prescription.Diagnosis, false)
	}

	pdf.SetY(pdf.GetY() + 6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Medications", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, med := range prescription.Medications {
		line := fmt.Sprintf("%s - %s, %s for %s", med.Name, med.Dosage, med.Frequency, med.Duration)
		pdf.CellFormat(0, 7, line, "", 1, "", false, 0, "")
		if med.Instructions != "" {
			pdf.CellFormat(0, 6, "  "+med.Instructions, "", 1, "", false, 0, "")
		}
	}

	if prescription.ValidUntil != nil {
		pdf.SetY(pdf.GetY() + 4)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, "Valid until "+prescription.ValidUntil.Format("2006-01-02"), "", 1, "", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetY(pdf.GetY() + 8)
	pdf.MultiCell(0, 5, "Follow the instructions given by the doctor properly. Your health is all that matters!", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addDetail(pdf *gofpdf.Fpdf, label, value string, isHeader bool) {
	if isHeader {
		pdf.SetFont("Arial", "B", 12)
	} else {
		pdf.SetFont("Arial", "", 12)
	}
	pdf.CellFormat(0, 8, label+" "+value, "", 1, "", false, 0, "")
}
