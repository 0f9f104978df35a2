package auth

import (
	"fmt"
	"net/smtp"
)

func (h *Handler) sendVerificationEmail(to string, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", h.Cfg.AppURL, token)
	body := fmt.Sprintf("Click the following link to verify your QUIZZQ account:\n\n%s", link)
	return h.sendMail(to, "Verify Your QUIZZQ Account", body)
}

func (h *Handler) sendPasswordResetEmail(to string, link string) error {
	body := fmt.Sprintf("Click the following link to reset your QUIZZQ password:\n\n%s", link)
	return h.sendMail(to, "Reset Your QUIZZQ Password", body)
}

func (h *Handler) sendMail(to, subject, body string) error {
	from := h.Cfg.SMTPFrom
	host := h.Cfg.SMTPHost
	if from == "" || host == "" {
		// Dev setup without SMTP: log the mail instead of failing signup.
		h.Log.Infow("mail_skipped", "to", to, "subject", subject, "body", body)
		return nil
	}

	auth := smtp.PlainAuth("", from, h.Cfg.SMTPPassword, host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(host+":"+h.Cfg.SMTPPort, auth, from, []string{to}, message); err != nil {
		h.Log.Errorw("smtp_error", "to", to, "error", err.Error())
		return err
	}
	return nil
}
