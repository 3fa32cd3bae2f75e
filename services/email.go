package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

type EmailService struct {
	appContext.DefaultService

	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	baseURL      string

	templates map[string]*template.Template
}

const EMAIL_SVC = "email_svc"

func (svc EmailService) Id() string {
	return EMAIL_SVC
}

func (svc *EmailService) Configure(ctx *appContext.Context) error {
	svc.smtpHost = os.Getenv("SMTP_HOST")
	svc.smtpPort = os.Getenv("SMTP_PORT")
	svc.smtpUsername = os.Getenv("SMTP_USERNAME")
	svc.smtpPassword = os.Getenv("SMTP_PASSWORD")
	svc.fromEmail = os.Getenv("FROM_EMAIL")
	svc.fromName = os.Getenv("FROM_NAME")
	svc.baseURL = os.Getenv("BASE_URL")

	if svc.smtpPort == "" {
		svc.smtpPort = "587"
	}
	if svc.fromName == "" {
		svc.fromName = "Inkwell"
	}
	if svc.baseURL == "" {
		svc.baseURL = "http://localhost:8000"
	}

	svc.templates = make(map[string]*template.Template)

	return svc.DefaultService.Configure(ctx)
}

func (svc *EmailService) Start() error {
	if err := svc.loadTemplates(); err != nil {
		log.WithError(err).Error("Failed to load email templates")
		// Don't fail startup, just log the error
	}
	return nil
}

const verificationEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Verify Your Email - {{.AppName}}</title>
</head>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="border-bottom: 2px solid #1a1a2e;">Welcome to {{.AppName}}</h1>
        <p>Hi {{.Username}},</p>
        <p>Thanks for joining {{.AppName}}. Confirm your email address with this code:</p>
        <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
        <p>The code expires in 24 hours. If you didn't create an account, ignore this email.</p>
    </div>
</body>
</html>
`

const lockoutEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Account Temporarily Locked - {{.AppName}}</title>
</head>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="border-bottom: 2px solid #b91c1c;">Account Temporarily Locked</h1>
        <p>Hi {{.Username}},</p>
        <p>Your {{.AppName}} account was locked after too many failed sign-in attempts.</p>
        <div style="background: #fef2f2; border-left: 4px solid #b91c1c; padding: 12px;">
            <strong>Locked for:</strong> {{.Duration}}<br>
            <strong>Last attempt from:</strong> {{.IP}}
        </div>
        <p>If this was you, wait for the lock to expire and try again.</p>
        <p>If this wasn't you, reset your password as soon as the lock expires and
        consider whether your password is used anywhere else.</p>
    </div>
</body>
</html>
`

const commentNotificationEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Comment - {{.AppName}}</title>
</head>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="border-bottom: 2px solid #1a1a2e;">New comment on "{{.ArticleTitle}}"</h1>
        <p>{{.CommenterName}} wrote:</p>
        <blockquote style="border-left: 3px solid #ccc; padding-left: 12px; color: #444;">{{.Excerpt}}</blockquote>
        <p><a href="{{.ArticleURL}}">View the conversation</a></p>
    </div>
</body>
</html>
`

const passwordResetEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset Your Password - {{.AppName}}</title>
</head>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="border-bottom: 2px solid #1a1a2e;">Password Reset</h1>
        <p>Hi {{.Username}},</p>
        <p>Someone requested a password reset for your {{.AppName}} account. Use this code:</p>
        <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
        <p>The code expires in 1 hour and works once.</p>
        <p>If you didn't request a reset, you can ignore this email. Your password is unchanged.</p>
    </div>
</body>
</html>
`

const loginNotificationEmailHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Sign-In - {{.AppName}}</title>
</head>
<body style="font-family: Georgia, serif; color: #2d2d2d;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="border-bottom: 2px solid #1a1a2e;">New sign-in to your account</h1>
        <p>Hi {{.Username}},</p>
        <div style="background: #f8f8f8; border-left: 4px solid #1a1a2e; padding: 12px;">
            <strong>Time:</strong> {{.LoginTime}}<br>
            <strong>IP address:</strong> {{.IP}}<br>
            <strong>Device:</strong> {{.Device}}<br>
            <strong>Location:</strong> {{.Location}}
        </div>
        <p>If this was you, no action is needed.</p>
        <p>If you don't recognize this sign-in, reset your password immediately.</p>
    </div>
</body>
</html>
`

type verificationEmailData struct {
	AppName  string
	Username string
	Code     string
}

type lockoutEmailData struct {
	AppName  string
	Username string
	Duration string
	IP       string
}

type passwordResetEmailData struct {
	AppName  string
	Username string
	Code     string
}

type loginNotificationEmailData struct {
	AppName   string
	Username  string
	LoginTime string
	IP        string
	Device    string
	Location  string
}

type commentNotificationData struct {
	AppName       string
	ArticleTitle  string
	CommenterName string
	Excerpt       string
	ArticleURL    string
}

func (svc *EmailService) loadTemplates() error {
	var err error

	svc.templates["verification"], err = template.New("verification").Parse(verificationEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse verification email template: %w", err)
	}

	svc.templates["lockout"], err = template.New("lockout").Parse(lockoutEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse lockout email template: %w", err)
	}

	svc.templates["password_reset"], err = template.New("password_reset").Parse(passwordResetEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse password reset email template: %w", err)
	}

	svc.templates["login_notification"], err = template.New("login_notification").Parse(loginNotificationEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse login notification template: %w", err)
	}

	svc.templates["comment_notification"], err = template.New("comment_notification").Parse(commentNotificationEmailHTML)
	if err != nil {
		return fmt.Errorf("failed to parse comment notification template: %w", err)
	}

	return nil
}

func (svc *EmailService) SendVerificationEmail(email, username, code string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping verification email")
		return nil
	}

	data := verificationEmailData{
		AppName:  svc.fromName,
		Username: username,
		Code:     code,
	}

	subject := fmt.Sprintf("Verify Your Email Address - %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "verification", data)
}

func (svc *EmailService) SendPasswordResetEmail(email, username, code string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping password reset email")
		return nil
	}

	data := passwordResetEmailData{
		AppName:  svc.fromName,
		Username: username,
		Code:     code,
	}

	subject := fmt.Sprintf("Reset Your Password - %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "password_reset", data)
}

// SendLoginNotificationEmail is informational only; callers treat failures as
// best-effort.
func (svc *EmailService) SendLoginNotificationEmail(email, username string, loginTime time.Time, ip, device, location string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping login notification")
		return nil
	}

	data := loginNotificationEmailData{
		AppName:   svc.fromName,
		Username:  username,
		LoginTime: loginTime.UTC().Format("2006-01-02 15:04 MST"),
		IP:        ip,
		Device:    device,
		Location:  location,
	}

	subject := fmt.Sprintf("New Sign-In to Your Account - %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "login_notification", data)
}

// SendLockoutNotificationEmail tells the account owner their account was
// locked. The login-attempt tracker guarantees at most one call per episode.
func (svc *EmailService) SendLockoutNotificationEmail(email, username string, duration time.Duration, ip string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping lockout notification")
		return nil
	}

	data := lockoutEmailData{
		AppName:  svc.fromName,
		Username: username,
		Duration: duration.Round(time.Minute).String(),
		IP:       ip,
	}

	subject := fmt.Sprintf("Account Temporarily Locked - %s", svc.fromName)
	return svc.sendTemplateEmail(email, subject, "lockout", data)
}

func (svc *EmailService) SendCommentNotificationEmail(email, articleTitle, articleSlug, commenterName, excerpt string) error {
	if svc.smtpHost == "" {
		log.Warn("SMTP not configured, skipping comment notification")
		return nil
	}

	data := commentNotificationData{
		AppName:       svc.fromName,
		ArticleTitle:  articleTitle,
		CommenterName: commenterName,
		Excerpt:       excerpt,
		ArticleURL:    fmt.Sprintf("%s/articles/%s", svc.baseURL, articleSlug),
	}

	subject := fmt.Sprintf("New comment on %q - %s", articleTitle, svc.fromName)
	return svc.sendTemplateEmail(email, subject, "comment_notification", data)
}

func (svc *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	tmpl, exists := svc.templates[templateName]
	if !exists {
		return fmt.Errorf("template %s not found", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return svc.sendEmail(to, subject, body.String())
}

func (svc *EmailService) sendEmail(to, subject, body string) error {
	if svc.smtpHost == "" {
		return fmt.Errorf("SMTP not configured")
	}

	auth := smtp.PlainAuth("", svc.smtpUsername, svc.smtpPassword, svc.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		svc.fromName, svc.fromEmail, to, subject, body))

	err := smtp.SendMail(
		svc.smtpHost+":"+svc.smtpPort,
		auth,
		svc.fromEmail,
		[]string{to},
		msg,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{"to": to, "subject": subject}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Email sent successfully")
	return nil
}
