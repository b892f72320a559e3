package testutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// ReceivedMail is a message accepted by the SMTP mock server.
type ReceivedMail struct {
	From     string
	To       []string
	Data     []byte
	AuthUser string

	// TLS is true when the message was received over an encrypted connection.
	TLS bool
}

// SMTPServerOption configures the SMTP mock server.
type SMTPServerOption func(*SMTPServerInstance)

// WithStartTLS advertises STARTTLS using a self signed certificate.
func WithStartTLS() SMTPServerOption {
	return func(ms *SMTPServerInstance) {
		ms.server.TLSConfig = serverTLSConfig()
	}
}

// WithImplicitTLS serves TLS from the first byte, like port 465.
func WithImplicitTLS() SMTPServerOption {
	return func(ms *SMTPServerInstance) {
		ms.implicit = true
	}
}

// SMTPServerInstance is an in-process SMTP server requiring PLAIN auth.
type SMTPServerInstance struct {
	// Delay holds every DATA command for the given duration.
	Delay time.Duration

	// RejectData makes the server reject every message with the given error.
	RejectData error

	user     string
	pass     string
	implicit bool
	server   *smtp.Server
	listener net.Listener
	mux      sync.Mutex
	mails    []*ReceivedMail
}

// SMTPServer starts a new SMTP server listening on a random local port.
// Without options the server speaks plain SMTP only.
func SMTPServer(user, pass string, opts ...SMTPServerOption) *SMTPServerInstance {
	ln, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		panic(err)
	}

	ms := &SMTPServerInstance{
		user:     user,
		pass:     pass,
		listener: ln,
	}

	ms.server = smtp.NewServer(&smtpBackend{ms: ms})
	ms.server.Domain = "localhost"
	ms.server.ReadTimeout = 10 * time.Second
	ms.server.WriteTimeout = 10 * time.Second
	ms.server.AllowInsecureAuth = true

	for _, opt := range opts {
		opt(ms)
	}

	if ms.implicit {
		go ms.server.Serve(tls.NewListener(ln, serverTLSConfig()))
	} else {
		go ms.server.Serve(ln)
	}

	return ms
}

// ClientTLSConfig returns a client configuration trusting the server certificate.
func (ms *SMTPServerInstance) ClientTLSConfig() *tls.Config {
	pool := x509.NewCertPool()
	pool.AddCert(testCertificate().Leaf)

	return &tls.Config{
		RootCAs:    pool,
		ServerName: ms.Host(),
		MinVersion: tls.VersionTLS12,
	}
}

// Host returns the listening host.
func (ms *SMTPServerInstance) Host() string {
	return ms.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port.
func (ms *SMTPServerInstance) Port() string {
	return strconv.Itoa(ms.listener.Addr().(*net.TCPAddr).Port)
}

// Mails returns the accepted messages.
func (ms *SMTPServerInstance) Mails() []*ReceivedMail {
	ms.mux.Lock()
	defer ms.mux.Unlock()

	list := make([]*ReceivedMail, len(ms.mails))
	copy(list, ms.mails)
	return list
}

// Close stops the server.
func (ms *SMTPServerInstance) Close() {
	ms.server.Close()
}

type smtpBackend struct {
	ms *SMTPServerInstance
}

func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ms: b.ms, conn: c}, nil
}

type smtpSession struct {
	ms   *SMTPServerInstance
	conn *smtp.Conn
	user string
	mail *ReceivedMail
}

func (s *smtpSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *smtpSession) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.ms.user || password != s.ms.pass {
			return errors.New("invalid username or password")
		}

		s.user = username
		return nil
	}), nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if s.user == "" {
		return smtp.ErrAuthRequired
	}

	_, isTLS := s.conn.TLSConnectionState()
	s.mail = &ReceivedMail{From: from, AuthUser: s.user, TLS: isTLS}
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.mail.To = append(s.mail.To, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)

	if err != nil {
		return err
	}

	if s.ms.Delay > 0 {
		time.Sleep(s.ms.Delay)
	}

	if s.ms.RejectData != nil {
		return s.ms.RejectData
	}

	s.mail.Data = data

	s.ms.mux.Lock()
	s.ms.mails = append(s.ms.mails, s.mail)
	s.ms.mux.Unlock()

	return nil
}

func (s *smtpSession) Reset() {
	s.mail = nil
}

func (s *smtpSession) Logout() error {
	return nil
}

var (
	certOnce sync.Once
	cert     tls.Certificate
)

// testCertificate returns a self signed certificate for 127.0.0.1 and localhost.
func testCertificate() tls.Certificate {
	certOnce.Do(func() {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

		if err != nil {
			panic(err)
		}

		tmpl := &x509.Certificate{
			SerialNumber:          big.NewInt(1),
			Subject:               pkix.Name{Organization: []string{"Folio Test"}},
			NotBefore:             time.Now().Add(-time.Hour),
			NotAfter:              time.Now().Add(24 * time.Hour),
			KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
			ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
			BasicConstraintsValid: true,
			IsCA:                  true,
			DNSNames:              []string{"localhost"},
			IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		}

		der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)

		if err != nil {
			panic(err)
		}

		leaf, err := x509.ParseCertificate(der)

		if err != nil {
			panic(err)
		}

		cert = tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
			Leaf:        leaf,
		}
	})

	return cert
}

func serverTLSConfig() *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{testCertificate()},
		MinVersion:   tls.VersionTLS12,
	}
}
