package services

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/cv-matcher/internal/apperrors"
	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/models"
)

type receivedMail struct {
	From        string
	To          []string
	Data        string
	Auth        string
	AuthOverTLS bool
	TLS         bool
}

type fakeSMTPOptions struct {
	rejectRcpt bool
	dropOnQuit bool
	// tlsConfig enables STARTTLS when set.
	tlsConfig *tls.Config
}

// fakeSMTPServer speaks just enough ESMTP for net/smtp.
type fakeSMTPServer struct {
	ln   net.Listener
	opts fakeSMTPOptions

	mu    sync.Mutex
	mails []receivedMail
	wg    sync.WaitGroup
}

func startFakeSMTP(t *testing.T, opts fakeSMTPOptions) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTPServer{ln: ln, opts: opts}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})
	return s
}

func testTLSConfig(t *testing.T) *tls.Config {
	t.Helper()
	srv := httptest.NewTLSServer(nil)
	t.Cleanup(srv.Close)
	return &tls.Config{Certificates: []tls.Certificate{srv.TLS.Certificates[0]}}
}

func (s *fakeSMTPServer) mailConfig() config.MailConfig {
	host, port, _ := net.SplitHostPort(s.ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return config.MailConfig{
		From:    "recruitment@example.com",
		Host:    host,
		Port:    p,
		Timeout: 5 * time.Second,
	}
}

func (s *fakeSMTPServer) received() []receivedMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]receivedMail, len(s.mails))
	copy(out, s.mails)
	return out
}

func (s *fakeSMTPServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	var current receivedMail
	upgraded := false
	reply("220 fake.local ESMTP ready")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch verb {
		case "EHLO":
			reply("250-fake.local")
			if s.opts.tlsConfig != nil && !upgraded {
				reply("250-STARTTLS")
			}
			reply("250-AUTH PLAIN")
			reply("250 8BITMIME")
		case "HELO":
			reply("250 fake.local")
		case "STARTTLS":
			if s.opts.tlsConfig == nil || upgraded {
				reply("502 command not implemented")
				continue
			}
			reply("220 2.0.0 Ready to start TLS")
			tlsConn := tls.Server(conn, s.opts.tlsConfig)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			r = bufio.NewReader(conn)
			upgraded = true
		case "AUTH":
			current.Auth = line
			current.AuthOverTLS = upgraded
			reply("235 2.7.0 Authentication successful")
		case "MAIL":
			current.From = between(line, "<", ">")
			reply("250 OK")
		case "RCPT":
			if s.opts.rejectRcpt {
				reply("550 5.1.1 mailbox unavailable")
				continue
			}
			current.To = append(current.To, between(line, "<", ">"))
			reply("250 OK")
		case "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var data strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				data.WriteString(l)
			}
			current.Data = data.String()
			current.TLS = upgraded
			s.mu.Lock()
			s.mails = append(s.mails, current)
			s.mu.Unlock()
			current = receivedMail{}
			reply("250 OK queued")
		case "RSET", "NOOP":
			reply("250 OK")
		case "QUIT":
			if !s.opts.dropOnQuit {
				reply("221 Bye")
			}
			return
		default:
			reply("502 command not implemented")
		}
	}
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	j := strings.LastIndex(s, end)
	if i < 0 || j <= i {
		return ""
	}
	return s[i+1 : j]
}

func sampleNotification() models.Notification {
	return ComposeNotification(models.DecisionAccept, "Ana", "Data Engineer")
}

func TestSMTPNotifierSendsMessage(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})
	notifier := NewSMTPNotifier(server.mailConfig(), zap.NewNop())

	delivery := notifier.Send(context.Background(), "ana@example.com", sampleNotification())

	require.True(t, delivery.Sent, delivery.Message)
	assert.Equal(t, MessageEmailSent, delivery.Message)
	assert.NoError(t, delivery.Err)
	assert.NotEmpty(t, delivery.MessageID)

	mails := server.received()
	require.Len(t, mails, 1)
	got := mails[0]
	assert.Equal(t, "recruitment@example.com", got.From)
	assert.Equal(t, []string{"ana@example.com"}, got.To)
	assert.Empty(t, got.Auth)
	assert.Contains(t, got.Data, "Subject: Congratulations! Your Application for Data Engineer\r\n")
	assert.Contains(t, got.Data, "To: ana@example.com\r\n")
	assert.Contains(t, got.Data, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, got.Data, "Dear Ana,\r\n")
}

func TestSMTPNotifierAuthenticatesWithCredentials(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})
	cfg := server.mailConfig()
	cfg.Sender = "hr@example.com"
	cfg.Password = "secret"

	delivery := NewSMTPNotifier(cfg, zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())
	require.True(t, delivery.Sent, delivery.Message)

	mails := server.received()
	require.Len(t, mails, 1)
	assert.True(t, strings.HasPrefix(mails[0].Auth, "AUTH PLAIN "))
	assert.Equal(t, "hr@example.com", mails[0].From)
}

func TestSMTPNotifierUpgradesToTLS(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{tlsConfig: testTLSConfig(t)})
	cfg := server.mailConfig()
	cfg.Sender = "hr@example.com"
	cfg.Password = "secret"
	cfg.RequireTLS = true
	cfg.InsecureSkipVerify = true

	delivery := NewSMTPNotifier(cfg, zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())

	require.True(t, delivery.Sent, delivery.Message)
	assert.Equal(t, MessageEmailSent, delivery.Message)

	mails := server.received()
	require.Len(t, mails, 1)
	assert.True(t, mails[0].TLS)
	assert.True(t, strings.HasPrefix(mails[0].Auth, "AUTH PLAIN "))
	assert.True(t, mails[0].AuthOverTLS)
	assert.Contains(t, mails[0].Data, "Subject: Congratulations! Your Application for Data Engineer\r\n")
}

func TestSMTPNotifierRejectsUntrustedCertificate(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{tlsConfig: testTLSConfig(t)})

	delivery := NewSMTPNotifier(server.mailConfig(), zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.Contains(t, delivery.Message, "failed to start TLS")
	assert.Empty(t, server.received())
}

func TestSMTPNotifierIgnoresDisconnectOnQuit(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{dropOnQuit: true})

	delivery := NewSMTPNotifier(server.mailConfig(), zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())

	assert.True(t, delivery.Sent, delivery.Message)
	assert.Equal(t, MessageEmailSent, delivery.Message)
	assert.NoError(t, delivery.Err)
	assert.Len(t, server.received(), 1)
}

func TestSMTPNotifierNoPlaintextWarningForLoopback(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})
	core, logs := observer.New(zapcore.WarnLevel)

	delivery := NewSMTPNotifier(server.mailConfig(), zap.New(core)).Send(context.Background(), "ana@example.com", sampleNotification())

	require.True(t, delivery.Sent, delivery.Message)
	assert.Zero(t, logs.Len())
}

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"smtp.gmail.com", false},
		{"10.0.0.5", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopbackHost(tt.host))
		})
	}
}

func TestSMTPNotifierUnreachableRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	cfg := config.MailConfig{From: "hr@example.com", Host: "127.0.0.1", Port: addr.Port, Timeout: time.Second}
	delivery := NewSMTPNotifier(cfg, zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.True(t, strings.HasPrefix(delivery.Message, "Failed to send email: "), delivery.Message)
	assert.True(t, apperrors.IsNotification(delivery.Err))
}

func TestSMTPNotifierRequireTLSWithoutSupport(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})
	cfg := server.mailConfig()
	cfg.RequireTLS = true

	delivery := NewSMTPNotifier(cfg, zap.NewNop()).Send(context.Background(), "ana@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.Contains(t, delivery.Message, "STARTTLS")
	assert.Empty(t, server.received())
}

func TestSMTPNotifierRejectedRecipient(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{rejectRcpt: true})

	delivery := NewSMTPNotifier(server.mailConfig(), zap.NewNop()).Send(context.Background(), "ghost@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.Contains(t, delivery.Message, "ghost@example.com")
	assert.Empty(t, server.received())
}

func TestSMTPNotifierInvalidRecipient(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})

	delivery := NewSMTPNotifier(server.mailConfig(), zap.NewNop()).Send(context.Background(), "not an address", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.Contains(t, delivery.Message, "invalid recipient")
	assert.Empty(t, server.received())
}

func TestSMTPNotifierCancelledContext(t *testing.T) {
	server := startFakeSMTP(t, fakeSMTPOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivery := NewSMTPNotifier(server.mailConfig(), zap.NewNop()).Send(ctx, "ana@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.Empty(t, server.received())
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	n := models.Notification{
		Subject: "Hello\r\nBcc: attacker@example.com",
		Body:    "line one\nline two",
	}

	msg := string(buildMessage("hr@example.com", "ana@example.com", "<id@example.com>", n))
	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)

	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), "injected header %q", line)
	}
	assert.Contains(t, headers, "Subject: Hello  Bcc: attacker@example.com")
	assert.Equal(t, "line one\r\nline two", body)
}

func TestPreviewNotifierNeverSends(t *testing.T) {
	delivery := NewPreviewNotifier(nil).Send(context.Background(), "ana@example.com", sampleNotification())

	assert.False(t, delivery.Sent)
	assert.True(t, delivery.Skipped)
	assert.NotEmpty(t, delivery.Message)
	assert.NoError(t, delivery.Err)
}
