package configuration

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vaidya/models"
)

// Config holds every externally supplied setting. It is built once at
// startup by Load; business logic reads this struct, never the environment.
type Config struct {
	Port         string
	DatabaseDSN  string
	RedisAddr    string
	JWTSecret    string
	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
}

// Cfg is the process-wide configuration, set by Load.
var Cfg *Config

// hold connection to db
var DB *gorm.DB

// Load reads the .env file (if present) and the environment into a Config.
// The database DSN and the token-signing secret are required; nothing that
// hashes, signs or verifies can run without them.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg := &Config{
		Port:         os.Getenv("PORT"),
		DatabaseDSN:  os.Getenv("DB"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SMTPHost:     "smtp.gmail.com",
		SMTPPort:     587,
		SMTPEmail:    os.Getenv("Email"),
		SMTPPassword: os.Getenv("Password"),
	}

	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB connection string is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	Cfg = cfg
	return cfg
}

// ConfigDB initializes the database connection and migrates the schema.
func ConfigDB(cfg *Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("Failed to connect to the database")
	}

	if err := MigrateDB(DB); err != nil {
		panic("Failed to migrate the database: " + err.Error())
	}
}

// MigrateDB creates/updates every table, including the unique indexes on
// patient email, doctor email and doctor license that back the duplicate
// checks under concurrent signups.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Patient{},
		&models.MedicalHistory{},
		&models.Allergy{},
		&models.Medication{},
		&models.Doctor{},
		&models.DoctorAvailability{},
		&models.TimeSlot{},
		&models.Review{},
		&models.Appointment{},
		&models.Vitals{},
		&models.HealthRecord{},
		&models.Prescription{},
		&models.MedicationItem{},
	)
}
