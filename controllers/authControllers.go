package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"vaidya/authentication"
	"vaidya/configuration"
	"vaidya/models"
)

var validate = validator.New()

// AuthController owns the signup/signin flow. It carries the token service
// built at startup so handlers never reach into the environment for the
// signing secret.
type AuthController struct {
	Tokens *authentication.TokenService
}

func NewAuthController(ts *authentication.TokenService) *AuthController {
	return &AuthController{Tokens: ts}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`

	// Patient-specific optional fields
	Age         int    `json:"age"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
	Gender      string `json:"gender"`

	// Doctor-specific optional fields
	Specialty string `json:"specialty"`
	License   string `json:"license"`
	Hospital  string `json:"hospital"`

	Phone string `json:"phone" validate:"omitempty,len=10,numeric"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
}

// Signup registers a new patient or doctor and returns a fresh token.
func (a *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := buildAccount(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := authentication.SetPassword(account, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// Friendly check first; the unique index on email is what actually wins
	// a race between two concurrent signups.
	if _, err := findAccountByEmail(req.Role, account.AccountEmail()); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists with this email"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during signup"})
		return
	}

	if doc, ok := account.(*models.Doctor); ok {
		var existing models.Doctor
		err := configuration.DB.Where("license = ?", doc.License).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Doctor already exists with this license number"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during signup"})
			return
		}
	}

	if err := configuration.DB.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": duplicateAccountMessage(account)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during signup"})
		return
	}

	token, err := a.Tokens.Issue(account.AccountID(), req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"userId":  account.AccountID(),
		"role":    req.Role,
		"name":    account.AccountName(),
	})
}

// Signin authenticates an existing user. The failure message never reveals
// whether the email existed.
func (a *AuthController) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := findAccountByEmail(req.Role, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during signin"})
		return
	}

	ok, err := authentication.CheckPassword(account.PasswordHash(), req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during signin"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := a.Tokens.Issue(account.AccountID(), req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign in successful",
		"token":   token,
		"userId":  account.AccountID(),
		"role":    req.Role,
		"name":    account.AccountName(),
	})
}

// buildAccount turns a validated signup request into the role's model,
// filling the original defaults for missing doctor fields.
func buildAccount(req *signupRequest) (models.Account, error) {
	email := normalizeEmail(req.Email)

	if req.Role == models.RolePatient {
		patient := &models.Patient{
			Name:   req.Name,
			Email:  email,
			Age:    req.Age,
			Gender: req.Gender,
			Phone:  req.Phone,
		}
		if req.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				return nil, errors.New("invalid dateOfBirth, expected YYYY-MM-DD")
			}
			patient.DateOfBirth = &dob
			patient.Age = models.AgeFromDOB(dob, time.Now())
		}
		return patient, nil
	}

	specialty := req.Specialty
	if specialty == "" {
		specialty = "General Physician"
	}
	if !models.IsValidSpecialty(specialty) {
		return nil, errors.New("unknown specialty")
	}
	license := req.License
	if license == "" {
		license = fmt.Sprintf("LIC%d", time.Now().Unix())
	}
	return &models.Doctor{
		Name:      req.Name,
		Email:     email,
		Specialty: specialty,
		License:   license,
		Hospital:  req.Hospital,
		Phone:     req.Phone,
	}, nil
}

// findAccountByEmail looks up the identity in the role's own table.
func findAccountByEmail(role, email string) (models.Account, error) {
	if role == models.RolePatient {
		var patient models.Patient
		if err := configuration.DB.Where("email = ?", email).First(&patient).Error; err != nil {
			return nil, err
		}
		return &patient, nil
	}
	var doctor models.Doctor
	if err := configuration.DB.Where("email = ?", email).First(&doctor).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// duplicateAccountMessage names the field behind a unique-index collision.
// The pre-checks above usually answer first; this covers the race where a
// concurrent signup lands between the check and the insert.
func duplicateAccountMessage(account models.Account) string {
	if doc, ok := account.(*models.Doctor); ok {
		var existing models.Doctor
		if err := configuration.DB.Where("license = ?", doc.License).First(&existing).Error; err == nil {
			if existing.Email != doc.Email {
				return "Doctor already exists with this license number"
			}
		}
	}
	return "User already exists with this email"
}
