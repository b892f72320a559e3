package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/foliosite/folio/src/lib/config"
	"github.com/stretchr/testify/suite"
)

type PackageSuite struct {
	suite.Suite
}

var mailerEnv = []string{
	"CONTACT_EMAIL_TO",
	"CONTACT_EMAIL_FROM",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"SMTP_ALLOW_PLAIN",
	"CONTACT_MAILER_ENABLED",
	"CONTACT_MAILER_TRANSPORT",
	"AWS_REGION",
}

func (s *PackageSuite) BeforeTest(_, _ string) {
	config.Reset()
}

func (s *PackageSuite) AfterTest(_, _ string) {
	for _, k := range append(mailerEnv, "CONTACT_RATE_LIMIT_MAX", "CONTACT_RATE_LIMIT_WINDOW", "CONTACT_ALLOWED_ORIGINS") {
		os.Unsetenv(k)
	}

	config.Reset()
}

func (s *PackageSuite) Test_Defaults() {
	c := config.Get()

	s.True(config.IsTest())
	s.Equal(5, c.Contact.RateLimitMax)
	s.Equal(time.Minute, c.Contact.RateLimitWindow)
	s.Equal(10*time.Second, c.Contact.RelayTimeout)
	s.Equal([]string{}, c.Contact.AllowedOrigins)
	s.Equal("", c.Redis.Addr)
	s.Same(c, config.Get())
}

func (s *PackageSuite) Test_Overrides() {
	os.Setenv("CONTACT_RATE_LIMIT_MAX", "3")
	os.Setenv("CONTACT_RATE_LIMIT_WINDOW", "30000")
	os.Setenv("CONTACT_ALLOWED_ORIGINS", "https://example.org, https://www.example.org,")

	c := config.Get()

	s.Equal(3, c.Contact.RateLimitMax)
	s.Equal(30*time.Second, c.Contact.RateLimitWindow)
	s.Equal([]string{"https://example.org", "https://www.example.org"}, c.Contact.AllowedOrigins)
}

func (s *PackageSuite) Test_Mailer_Incomplete() {
	os.Setenv("CONTACT_EMAIL_TO", "me@example.org")
	os.Setenv("SMTP_HOST", "smtp.example.org")

	m := config.Mailer()

	s.False(m.IsComplete())
	s.Nil(m.Enabled)
	s.Equal([]string{"CONTACT_EMAIL_FROM", "SMTP_PORT", "SMTP_USER", "SMTP_PASS"}, m.Missing())
}

func (s *PackageSuite) Test_Mailer_Complete() {
	os.Setenv("CONTACT_EMAIL_TO", "me@example.org")
	os.Setenv("CONTACT_EMAIL_FROM", "site@example.org")
	os.Setenv("SMTP_HOST", "smtp.example.org")
	os.Setenv("SMTP_PORT", "465")
	os.Setenv("SMTP_USER", "user")
	os.Setenv("SMTP_PASS", "pass")
	os.Setenv("CONTACT_MAILER_ENABLED", "true")

	m := config.Mailer()

	s.True(m.IsComplete())
	s.True(m.ImplicitTLS())
	s.False(m.AllowPlain)
	s.Equal(config.TransportSMTP, m.Transport)
	s.NotNil(m.Enabled)
	s.True(*m.Enabled)
}

func (s *PackageSuite) Test_Mailer_SES() {
	os.Setenv("CONTACT_EMAIL_TO", "me@example.org")
	os.Setenv("CONTACT_EMAIL_FROM", "site@example.org")
	os.Setenv("CONTACT_MAILER_TRANSPORT", "SES")

	m := config.Mailer()
	s.Equal([]string{"AWS_REGION"}, m.Missing())

	os.Setenv("AWS_REGION", "eu-central-1")
	s.True(config.Mailer().IsComplete())
}

func (s *PackageSuite) Test_Mailer_AllowPlain() {
	os.Setenv("SMTP_PORT", "1025")
	os.Setenv("SMTP_ALLOW_PLAIN", "true")

	m := config.Mailer()
	s.False(m.ImplicitTLS())
	s.True(m.AllowPlain)
}

func (s *PackageSuite) Test_Mailer_ReadOnEveryCall() {
	s.Equal("", config.Mailer().To)
	os.Setenv("CONTACT_EMAIL_TO", "me@example.org")
	s.Equal("me@example.org", config.Mailer().To)
}

func TestPackages(t *testing.T) {
	suite.Run(t, &PackageSuite{})
}
