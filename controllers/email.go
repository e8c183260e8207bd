package controllers

import (
	"fmt"
	"io"

	"github.com/go-gomail/gomail"

	"vaidya/configuration"
)

// SendPrescriptionEmail emails a prescription PDF to the patient.
func SendPrescriptionEmail(msg, email, attachmentName string, attachmentData []byte) error {
	cfg := configuration.Cfg
	if cfg == nil || cfg.SMTPEmail == "" {
		return fmt.Errorf("mail is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Vaidya prescription")
	m.SetBody("text/plain", msg)

	m.Attach(attachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(attachmentData)
		return err
	}))

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// SendReminderEmail emails an appointment reminder.
func SendReminderEmail(msg, email string) error {
	cfg := configuration.Cfg
	if cfg == nil || cfg.SMTPEmail == "" {
		return fmt.Errorf("mail is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Appointment reminder")
	m.SetBody("text/plain", msg)

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}
