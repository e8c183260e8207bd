package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaidya/configuration"
)

// HealthCheck reports API and database status.
func HealthCheck(c *gin.Context) {
	database := "Disconnected"
	if configuration.DB != nil {
		if sqlDB, err := configuration.DB.DB(); err == nil && sqlDB.Ping() == nil {
			database = "Connected"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "OK",
		"message":  "Vaidya API is running",
		"database": database,
	})
}
