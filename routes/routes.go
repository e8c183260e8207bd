package routes

import (
	"github.com/gin-gonic/gin"

	"vaidya/authentication"
	"vaidya/controllers"
	"vaidya/models"
)

// SetupRoutes wires every API route. Each protected group declares the role
// it accepts; the middleware rejects tokens of any other role.
func SetupRoutes(r *gin.Engine, ts *authentication.TokenService) {
	r.GET("/api/health", controllers.HealthCheck)

	auth := controllers.NewAuthController(ts)
	r.POST("/api/auth/signup", auth.Signup)
	r.POST("/api/auth/signin", auth.Signin)

	patient := r.Group("/api/patient")
	patient.Use(authentication.AuthMiddleware(ts, models.RolePatient))
	{
		patient.GET("/profile", controllers.GetPatientProfile)
		patient.GET("/vitals/latest", controllers.GetLatestVitals)
		patient.POST("/vitals", controllers.AddVitals)
		patient.GET("/appointments/upcoming", controllers.GetUpcomingAppointment)
		patient.GET("/appointments", controllers.GetPatientAppointments)
		patient.POST("/appointments", controllers.BookAppointment)
		patient.POST("/appointments/:id/cancel", controllers.CancelPatientAppointment)
		patient.GET("/records/recent", controllers.GetRecentRecords)
		patient.GET("/records", controllers.GetRecords)
		patient.POST("/records", controllers.AddRecord)
		patient.GET("/consultations", controllers.GetPatientConsultations)
		patient.GET("/prescriptions", controllers.GetPatientPrescriptions)
	}

	doctor := r.Group("/api/doctor")
	doctor.Use(authentication.AuthMiddleware(ts, models.RoleDoctor))
	{
		doctor.GET("/profile", controllers.GetDoctorProfile)
		doctor.GET("/stats", controllers.GetDoctorStats)
		doctor.GET("/consultations/upcoming", controllers.GetUpcomingConsultations)
		doctor.GET("/patients/recent", controllers.GetRecentPatients)
		doctor.GET("/schedule", controllers.GetSchedule)
		doctor.GET("/patients", controllers.GetDoctorPatients)
		doctor.GET("/consultations", controllers.GetDoctorConsultations)
		doctor.GET("/messages", controllers.GetDoctorMessages)
		doctor.GET("/prescriptions", controllers.GetDoctorPrescriptions)
		doctor.POST("/prescriptions", controllers.CreatePrescription)
		doctor.POST("/availability", controllers.SaveAvailability)
		doctor.POST("/block-slot", controllers.BlockSlot)
		doctor.PUT("/appointments/:id", controllers.UpdateAppointment)
		doctor.POST("/appointments/:id/cancel", controllers.CancelDoctorAppointment)
		doctor.POST("/appointments/:id/complete", controllers.CompleteAppointment)
	}

	directory := r.Group("/api/doctors")
	directory.Use(authentication.AuthMiddleware(ts, models.RolePatient, models.RoleDoctor))
	{
		directory.GET("", controllers.ListDoctors)
		directory.GET("/:doctor_id/availability", controllers.GetDoctorAvailability)
	}
	// Only patients leave reviews.
	r.POST("/api/doctors/:doctor_id/reviews",
		authentication.AuthMiddleware(ts, models.RolePatient),
		controllers.AddReview)
}
