package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vaidya/authentication"
	"vaidya/configuration"
	"vaidya/cronjobs"
	"vaidya/routes"
)

func main() {
	cfg := configuration.Load()
	configuration.ConfigDB(cfg)
	configuration.InitRedis(cfg)

	tokens := authentication.NewTokenService(cfg.JWTSecret)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	routes.SetupRoutes(r, tokens)

	maintenance := cronjobs.NewMaintenance(configuration.DB)
	maintenance.Start()

	if err := r.Run(":" + cfg.Port); err != nil {
		panic(err)
	}
}
