package controllers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaidya/configuration"
	"vaidya/controllers"
	"vaidya/models"
)

func TestAddReviewRecomputesRating(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	path := "/api/doctors/" + itoa(doctorID) + "/reviews"

	w := doJSON(r, http.MethodPost, path, map[string]any{"rating": 5}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, path, map[string]any{"rating": 3, "comment": "fine"}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4.0, resp["rating"])
	assert.Equal(t, 2.0, resp["totalReviews"])

	var doctor models.Doctor
	require.NoError(t, configuration.DB.First(&doctor, doctorID).Error)
	assert.Equal(t, 4.0, doctor.Rating)
	assert.Equal(t, 2, doctor.TotalReviews)
}

func TestAddReviewRejectsBadRating(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/doctors/"+itoa(doctorID)+"/reviews",
		map[string]any{"rating": 6}, patientToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookAppointmentScopesToOwner(t *testing.T) {
	r := setupRouter(t)

	ashaToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	otherToken, _ := signup(t, r, map[string]any{
		"email": "b@x.com", "password": "secret1", "name": "Bala", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID,
		"date":     time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		"time":     "10:30 AM",
		"symptoms": []string{"headache"},
	}, ashaToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusScheduled, created.Status)
	assert.Equal(t, 30, created.Duration)
	// Video consultations get a generated meeting link.
	assert.Contains(t, created.MeetingLink, "https://meet.vaidya.app/")

	var ashaList, otherList []map[string]any

	w = doJSON(r, http.MethodGet, "/api/patient/appointments", nil, ashaToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ashaList))
	assert.Len(t, ashaList, 1)
	assert.Equal(t, "Dr. Rao", ashaList[0]["doctorName"])

	w = doJSON(r, http.MethodGet, "/api/patient/appointments", nil, otherToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherList))
	assert.Len(t, otherList, 0)
}

func TestBookAppointmentUnknownDoctor(t *testing.T) {
	r := setupRouter(t)

	token, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": 999,
		"date":     "2026-10-01",
		"time":     "10:30 AM",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelAppointmentOnlyOwn(t *testing.T) {
	r := setupRouter(t)

	ashaToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	otherToken, _ := signup(t, r, map[string]any{
		"email": "b@x.com", "password": "secret1", "name": "Bala", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, ashaToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	cancelPath := "/api/patient/appointments/" + itoa(created.AppointmentID) + "/cancel"

	w = doJSON(r, http.MethodPost, cancelPath, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, cancelPath, nil, ashaToken)
	require.Equal(t, http.StatusOK, w.Code)

	var apt models.Appointment
	require.NoError(t, configuration.DB.First(&apt, created.AppointmentID).Error)
	assert.Equal(t, models.StatusCancelled, apt.Status)
}

func TestUpcomingAppointmentNull(t *testing.T) {
	r := setupRouter(t)

	token, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})

	w := doJSON(r, http.MethodGet, "/api/patient/appointments/upcoming", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestVitalsLatestReturnsFourNewest(t *testing.T) {
	r := setupRouter(t)

	token, patientID := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})

	labels := []string{"Heart Rate", "Blood Pressure", "Temperature", "SpO2", "Weight"}
	for _, label := range labels {
		w := doJSON(r, http.MethodPost, "/api/patient/vitals", map[string]any{
			"label": label, "value": "72", "unit": "bpm",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var count int64
	configuration.DB.Model(&models.Vitals{}).Where("patient_id = ?", patientID).Count(&count)
	assert.Equal(t, int64(5), count)

	w := doJSON(r, http.MethodGet, "/api/patient/vitals/latest", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var vitals []models.Vitals
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vitals))
	assert.Len(t, vitals, 4)
	for _, v := range vitals {
		assert.Equal(t, patientID, v.PatientID)
		assert.Equal(t, "normal", v.Status)
		assert.Equal(t, "patient", v.RecordedBy)
	}
}

func TestHealthRecordTypeValidation(t *testing.T) {
	r := setupRouter(t)

	token, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/records", map[string]any{
		"title": "CBC", "type": "Lab Results",
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/patient/records", map[string]any{
		"title": "Bad", "type": "Horoscope",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookedSlotMap(t *testing.T) {
	day := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	slots := controllers.BookedSlotMap([]models.Appointment{
		{Date: day, Time: "10:30 AM"},
		{Date: day, Time: "11:00 AM"},
		{Date: day}, // no time slot, skipped
	})
	assert.Equal(t, map[string]bool{
		"2026-10-01_10:30 AM": true,
		"2026-10-01_11:00 AM": true,
	}, slots)
}

func TestDoctorDirectoryAndAvailability(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
		"specialty": "Cardiologist",
	})

	w := doJSON(r, http.MethodGet, "/api/doctors", nil, patientToken)
	require.Equal(t, http.StatusOK, w.Code)
	var doctors []models.Doctor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doctors))
	require.Len(t, doctors, 1)
	assert.Equal(t, "Cardiologist", doctors[0].Specialty)
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/api/doctors/"+itoa(doctorID)+"/availability", nil, patientToken)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		BookedSlots map[string]bool `json:"bookedSlots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.BookedSlots["2026-10-01_10:30 AM"])
}

func TestDoctorAvailabilityIDParsing(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	_, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)

	// A zero-padded id resolves to the same doctor and the same slots.
	w = doJSON(r, http.MethodGet, "/api/doctors/0"+itoa(doctorID)+"/availability", nil, patientToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-10-01_10:30 AM")

	w = doJSON(r, http.MethodGet, "/api/doctors/abc/availability", nil, patientToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDoctorMessagesEmpty(t *testing.T) {
	r := setupRouter(t)

	doctorToken, _ := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodGet, "/api/doctor/messages", nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUpdateAppointmentRejectsBadStatus(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	doctorToken, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := "/api/doctor/appointments/" + itoa(created.AppointmentID)

	w = doJSON(r, http.MethodPut, path, map[string]any{"status": "archived"}, doctorToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var apt models.Appointment
	require.NoError(t, configuration.DB.First(&apt, created.AppointmentID).Error)
	assert.Equal(t, models.StatusScheduled, apt.Status)

	w = doJSON(r, http.MethodPut, path, map[string]any{"status": models.StatusCompleted}, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, configuration.DB.First(&apt, created.AppointmentID).Error)
	assert.Equal(t, models.StatusCompleted, apt.Status)
}

func TestDoctorStatsAndCompletion(t *testing.T) {
	r := setupRouter(t)

	patientToken, _ := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	doctorToken, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodPost, "/api/doctor/appointments/"+itoa(created.AppointmentID)+"/complete", nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var apt models.Appointment
	require.NoError(t, configuration.DB.First(&apt, created.AppointmentID).Error)
	assert.Equal(t, models.StatusCompleted, apt.Status)

	w = doJSON(r, http.MethodGet, "/api/doctor/consultations", nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	var consultations []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &consultations))
	require.Len(t, consultations, 1)
	assert.Equal(t, "Asha", consultations[0]["patientName"])
}

func TestCreatePrescriptionCompletesAppointment(t *testing.T) {
	r := setupRouter(t)

	patientToken, patientID := signup(t, r, map[string]any{
		"email": "a@x.com", "password": "secret1", "name": "Asha", "role": "patient",
	})
	doctorToken, doctorID := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	w := doJSON(r, http.MethodPost, "/api/patient/appointments", map[string]any{
		"doctorId": doctorID, "date": "2026-10-01", "time": "10:30 AM",
	}, patientToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var apt models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apt))

	w = doJSON(r, http.MethodPost, "/api/doctor/prescriptions", map[string]any{
		"patientId":     patientID,
		"appointmentId": apt.AppointmentID,
		"diagnosis":     "Migraine",
		"validUntil":    "2026-12-01",
		"medications": []map[string]any{
			{"name": "Ibuprofen", "dosage": "400mg", "frequency": "twice daily", "duration": "5 days"},
		},
	}, doctorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var presc models.Prescription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &presc))
	assert.Equal(t, models.PrescriptionActive, presc.Status)

	var updated models.Appointment
	require.NoError(t, configuration.DB.First(&updated, apt.AppointmentID).Error)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.PrescriptionID)
	assert.Equal(t, presc.PrescriptionID, *updated.PrescriptionID)

	// Missing mandatory medication fields are rejected.
	w = doJSON(r, http.MethodPost, "/api/doctor/prescriptions", map[string]any{
		"patientId":   patientID,
		"medications": []map[string]any{{"name": "Ibuprofen"}},
	}, doctorToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAvailabilityReplacesWeek(t *testing.T) {
	r := setupRouter(t)

	doctorToken, _ := signup(t, r, map[string]any{
		"email": "doc@x.com", "password": "secret1", "name": "Dr. Rao", "role": "doctor",
	})

	week := []map[string]any{
		{"day": "Monday", "slots": []map[string]any{
			{"startTime": "09:00", "endTime": "09:30", "isAvailable": true, "maxAppointments": 1},
			{"startTime": "09:30", "endTime": "10:00", "isAvailable": true, "maxAppointments": 1},
		}},
	}
	w := doJSON(r, http.MethodPost, "/api/doctor/availability", week, doctorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Saving again replaces, not appends.
	w = doJSON(r, http.MethodPost, "/api/doctor/availability", week, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/doctor/profile", nil, doctorToken)
	require.Equal(t, http.StatusOK, w.Code)
	var doctor models.Doctor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doctor))
	require.Len(t, doctor.Availability, 1)
	assert.Equal(t, "Monday", doctor.Availability[0].Day)
	assert.Len(t, doctor.Availability[0].Slots, 2)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
