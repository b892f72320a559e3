package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	TransportSMTP = "smtp"
	TransportSES  = "ses"
)

// MailerConfig holds the outgoing mail settings of the contact form.
// Unlike Config, it is read from the environment on every call so that
// changing the environment does not require a restart.
type MailerConfig struct {
	To   string
	From string
	Host string
	Port string
	User string
	Pass string

	// Transport is either smtp or ses.
	Transport string

	// Region is the AWS region used by the ses transport.
	Region string

	// SESAccessKeyID and SESSecretAccessKey are optional static credentials
	// for the ses transport. The default AWS credential chain is used otherwise.
	SESAccessKeyID     string
	SESSecretAccessKey string

	// AllowPlain disables the mandatory STARTTLS upgrade (SMTP_ALLOW_PLAIN).
	AllowPlain bool

	// Enabled is nil when CONTACT_MAILER_ENABLED is not set, in which case
	// the mailer is considered enabled only when the configuration is complete.
	Enabled *bool
}

// Mailer reads the mailer configuration from the environment.
func Mailer() *MailerConfig {
	cnf := &MailerConfig{
		To:        strings.TrimSpace(os.Getenv("CONTACT_EMAIL_TO")),
		From:      strings.TrimSpace(os.Getenv("CONTACT_EMAIL_FROM")),
		Host:      strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:      strings.TrimSpace(os.Getenv("SMTP_PORT")),
		User:      os.Getenv("SMTP_USER"),
		Pass:      os.Getenv("SMTP_PASS"),
		Transport: strings.ToLower(getString(os.Getenv("CONTACT_MAILER_TRANSPORT"), TransportSMTP)),
		Region:    os.Getenv("AWS_REGION"),

		SESAccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),
	}

	cnf.AllowPlain, _ = strconv.ParseBool(os.Getenv("SMTP_ALLOW_PLAIN"))

	if v, err := strconv.ParseBool(os.Getenv("CONTACT_MAILER_ENABLED")); err == nil {
		cnf.Enabled = &v
	}

	return cnf
}

// Missing returns the names of the environment variables that are required
// by the selected transport but not set.
func (m *MailerConfig) Missing() []string {
	required := map[string]string{
		"CONTACT_EMAIL_TO":   m.To,
		"CONTACT_EMAIL_FROM": m.From,
	}

	keys := []string{"CONTACT_EMAIL_TO", "CONTACT_EMAIL_FROM"}

	if m.Transport == TransportSES {
		required["AWS_REGION"] = m.Region
		keys = append(keys, "AWS_REGION")
	} else {
		required["SMTP_HOST"] = m.Host
		required["SMTP_PORT"] = m.Port
		required["SMTP_USER"] = m.User
		required["SMTP_PASS"] = m.Pass
		keys = append(keys, "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS")
	}

	missing := []string{}

	for _, k := range keys {
		if required[k] == "" {
			missing = append(missing, k)
		}
	}

	return missing
}

// IsComplete returns true when every required field is present.
func (m *MailerConfig) IsComplete() bool {
	return len(m.Missing()) == 0
}

// ImplicitTLS returns true when the smtp connection has to be wrapped in
// TLS from the start. Any other port uses a plain connection which is
// upgraded with STARTTLS.
func (m *MailerConfig) ImplicitTLS() bool {
	return m.Port == "465"
}
