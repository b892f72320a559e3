package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foliosite/folio/src/ce/contactform"
	"github.com/stretchr/testify/suite"
)

type CommandsSuite struct {
	suite.Suite
	ts       *httptest.Server
	status   int
	response string
	received map[string]string
}

func (s *CommandsSuite) BeforeTest(_, _ string) {
	s.status = http.StatusOK
	s.response = `{"ok":true,"message":"Message received."}`
	s.received = nil

	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(contactform.DefaultEndpoint, r.URL.Path)
		s.NoError(json.NewDecoder(r.Body).Decode(&s.received))
		w.WriteHeader(s.status)
		w.Write([]byte(s.response))
	}))
}

func (s *CommandsSuite) AfterTest(_, _ string) {
	s.ts.Close()
}

func (s *CommandsSuite) run(stdin string, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	cmd := rootCmd()
	cmd.SetArgs(append([]string{"send", "--url", s.ts.URL + "/"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (s *CommandsSuite) Test_Send() {
	out, _, err := s.run("", "-n", "Ann", "-e", "ann@example.com", "-m", "Hello there, I need a website.")

	s.NoError(err)
	s.Equal(contactform.MsgSent+"\n", out)
	s.Equal(map[string]string{
		"name":    "Ann",
		"email":   "ann@example.com",
		"message": "Hello there, I need a website.",
	}, s.received)
}

func (s *CommandsSuite) Test_Send_Stdin() {
	_, _, err := s.run("  Hello there, I need a website.\n", "--name", "Ann", "--email", "ann@example.com", "--message", "-")

	s.NoError(err)
	s.Equal("Hello there, I need a website.", s.received["message"])
}

func (s *CommandsSuite) Test_Send_Invalid() {
	_, stderr, err := s.run("", "--name", "Ann", "--email", "ann")

	s.ErrorIs(err, contactform.ErrInvalid)
	s.Equal("email: Please enter a valid email.\nmessage: Tell me a little about what you need.\n", stderr)
	s.Nil(s.received)
}

func (s *CommandsSuite) Test_Send_ServerError() {
	s.status = http.StatusInternalServerError
	s.response = `{"error":"Failed to send message. Please try again later."}`

	_, _, err := s.run("", "-n", "Ann", "-e", "ann@example.com", "-m", "Hello there, I need a website.")

	s.Error(err)
	s.Contains(err.Error(), "Failed to send message. Please try again later.")
}

func TestCommands(t *testing.T) {
	suite.Run(t, &CommandsSuite{})
}
