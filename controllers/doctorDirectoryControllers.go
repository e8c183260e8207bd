package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vaidya/authentication"
	"vaidya/configuration"
	"vaidya/models"
)

const availabilityCacheTTL = time.Minute

// ListDoctors returns the doctor directory, sorted by name, passwords
// stripped.
func ListDoctors(c *gin.Context) {
	var doctors []models.Doctor
	err := configuration.DB.
		Preload("Availability.Slots").
		Preload("Availability").
		Order("name ASC").
		Find(&doctors).Error
	if err != nil {
		serverError(c, err)
		return
	}

	for i := range doctors {
		doctors[i].Sanitize()
	}
	c.JSON(http.StatusOK, doctors)
}

// GetDoctorAvailability returns the booked-slot map for a doctor, keyed
// "<yyyy-mm-dd>_<time>". The result is cached in redis briefly and the cache
// is dropped whenever a booking or cancellation changes the schedule.
func GetDoctorAvailability(c *gin.Context) {
	doctorID, ok := parseDoctorID(c)
	if !ok {
		return
	}

	// Same key builder as invalidation, so "07" and "7" share one entry.
	cacheKey := availabilityCacheKey(doctorID)
	if configuration.Client != nil {
		if cached, err := configuration.GetRedis(cacheKey); err == nil {
			var bookedSlots map[string]bool
			if err := json.Unmarshal([]byte(cached), &bookedSlots); err == nil {
				c.JSON(http.StatusOK, gin.H{"bookedSlots": bookedSlots})
				return
			}
		}
	}

	var doctor models.Doctor
	if err := configuration.DB.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		serverError(c, err)
		return
	}

	var booked []models.Appointment
	err := configuration.DB.
		Where("doctor_id = ? AND status IN ?", doctorID, []string{models.StatusScheduled, models.StatusBlocked}).
		Find(&booked).Error
	if err != nil {
		serverError(c, err)
		return
	}

	bookedSlots := BookedSlotMap(booked)

	if configuration.Client != nil {
		if data, err := json.Marshal(bookedSlots); err == nil {
			if err := configuration.SetRedis(cacheKey, data, availabilityCacheTTL); err != nil {
				// Cache miss next time, nothing else to do.
				fmt.Println("Failed to cache availability:", err.Error())
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"bookedSlots": bookedSlots})
}

// BookedSlotMap flattens appointments into the "<date>_<time>" lookup the
// booking pages consume.
func BookedSlotMap(appointments []models.Appointment) map[string]bool {
	slots := make(map[string]bool, len(appointments))
	for _, apt := range appointments {
		if apt.Time == "" || apt.Date.IsZero() {
			continue
		}
		slots[fmt.Sprintf("%s_%s", apt.Date.Format("2006-01-02"), apt.Time)] = true
	}
	return slots
}

type addReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// AddReview records a patient's rating for a doctor and recomputes the
// doctor's mean rating from the full review list.
func AddReview(c *gin.Context) {
	patientID, _ := authentication.CallerID(c)
	doctorID, ok := parseDoctorID(c)
	if !ok {
		return
	}

	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var doctor models.Doctor
	if err := configuration.DB.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		serverError(c, err)
		return
	}

	review := models.Review{
		DoctorID:  doctor.DoctorID,
		PatientID: patientID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := configuration.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		var reviews []models.Review
		if err := tx.Where("doctor_id = ?", doctor.DoctorID).Find(&reviews).Error; err != nil {
			return err
		}
		doctor.RecomputeRating(reviews)
		return tx.Model(&doctor).
			Select("rating", "total_reviews").
			Updates(map[string]interface{}{"rating": doctor.Rating, "total_reviews": doctor.TotalReviews}).Error
	})
	if err != nil {
		serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"review":       review,
		"rating":       doctor.Rating,
		"totalReviews": doctor.TotalReviews,
	})
}

// parseDoctorID reads the :doctor_id path param as a uint. A non-numeric id
// cannot match any doctor, so it gets the same 404 as an unknown one.
func parseDoctorID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("doctor_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
		return 0, false
	}
	return uint(id), true
}

func availabilityCacheKey(doctorID uint) string {
	return fmt.Sprintf("availability:%d", doctorID)
}

// invalidateAvailabilityCache drops the cached booked-slot map after the
// schedule changes. Safe to call when redis was never initialized (tests).
func invalidateAvailabilityCache(doctorID uint) {
	if configuration.Client == nil {
		return
	}
	if err := configuration.DelRedis(availabilityCacheKey(doctorID)); err != nil {
		fmt.Println("Failed to invalidate availability cache:", err.Error())
	}
}

func generateMeetingLink() string {
	return "https://meet.vaidya.app/" + uuid.NewString()
}
