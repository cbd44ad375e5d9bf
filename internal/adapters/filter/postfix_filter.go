package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/maj/doc-classifier/internal/core"
	"go.uber.org/zap"
)

// PostfixFilter implements a Postfix content filter that tags incoming
// mail with subscription-classification headers and hands it back to
// Postfix for delivery.
type PostfixFilter struct {
	service        *core.ClassifierService
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	statusHeader   string
	scoreHeader    string
	reasonHeader   string
	postfixAddr    string
	postfixPort    int
	postfixEnabled bool
	subjectPrefix  string
	modifySubject  bool
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.ClassifierService,
	logger *zap.Logger,
	listenAddr string,
	statusHeader string,
	scoreHeader string,
	reasonHeader string,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *PostfixFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[Subscription] "
	}

	return &PostfixFilter{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		statusHeader:   statusHeader,
		scoreHeader:    scoreHeader,
		reasonHeader:   reasonHeader,
		postfixAddr:    postfixAddr,
		postfixPort:    postfixPort,
		postfixEnabled: postfixEnabled,
		subjectPrefix:  subjectPrefix,
		modifySubject:  modifySubject,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	// Create a new SMTP server
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	// Configure the server
	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	// Start the server in a goroutine
	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessDocument classifies a document through the underlying service.
// This is mainly used for testing or direct API calls
func (f *PostfixFilter) ProcessDocument(ctx context.Context, doc *core.Document) (*core.ClassificationRecord, error) {
	return f.service.ClassifyEmail(ctx, doc)
}

// sendToPostfix sends the processed email back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	// Connect to Postfix using go-smtp
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	// Get hostname for EHLO
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	// Connect to the server with a timeout
	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	// Set a deadline for the connection
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	// Create a client
	c := smtp.NewClient(conn)
	defer c.Close()

	// Send EHLO
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	// Set the sender
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	// Set the recipients
	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	// Send the email data
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	_, err = wc.Write(emailData)
	if err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// Quit the connection
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// Not returning an error here as the email has already been sent
	}

	return nil
}

// reasonFor summarizes a record for the reason header: oracle reasoning
// when available, otherwise the top matched patterns.
func reasonFor(rec *core.ClassificationRecord) string {
	if rec.Oracle != nil && rec.Oracle.Subscription != nil && rec.Oracle.Subscription.Reasoning != "" {
		return rec.Oracle.Subscription.Reasoning
	}
	if rec.Score == nil {
		return "no analysis"
	}
	patterns := rec.Score.MatchedPatterns
	if len(patterns) == 0 {
		return "no patterns matched"
	}
	if len(patterns) > 5 {
		patterns = patterns[:5]
	}
	return strings.Join(patterns, ", ")
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
	data       []byte
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
	s.data = nil
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	// Read the complete raw message data
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	// Keep a copy of the raw data for later reconstruction
	rawDataCopy := make([]byte, len(rawData))
	copy(rawDataCopy, rawData)

	// Parse the email message
	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	// Extract the text content for analysis
	textContent, isHTML, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	contentType := core.ContentText
	if isHTML {
		contentType = core.ContentHTML
	}

	doc := &core.Document{
		ID:          msg.Header.Get("Message-Id"),
		Subject:     msg.Header.Get("Subject"),
		Sender:      s.sender,
		Body:        textContent,
		ContentType: contentType,
		Date:        time.Now(),
	}
	if len(s.recipients) > 0 {
		doc.Recipient = s.recipients[0]
	}
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("%s-%d", s.sender, time.Now().UnixNano())
	}

	// Extract sender domain for logging
	senderDomain := "unknown"
	if parts := strings.Split(s.sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	// Classify the email
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec, classifyErr := s.filter.service.ClassifyEmail(ctx, doc)

	// Prepare the modified email with classification headers
	var modifiedEmail bytes.Buffer

	if classifyErr != nil {
		s.filter.logger.Error("Failed to classify email",
			zap.Error(classifyErr),
			zap.String("sender", s.sender),
			zap.String("sender_domain", senderDomain))
		fmt.Fprintf(&modifiedEmail, "X-Subscription-Analysis-Error: %s\r\n", classifyErr.Error())
	} else {
		status := "no"
		if rec.Accepted() {
			status = "yes"
		}
		fmt.Fprintf(&modifiedEmail, "%s: %s (%s)\r\n", s.filter.statusHeader, status, rec.Level.String())
		fmt.Fprintf(&modifiedEmail, "%s: %d/%d (%.1f%%)\r\n", s.filter.scoreHeader,
			rec.TotalScore, rec.MaxScore, rec.Score.Breakdown.Percentage())
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.reasonHeader, reasonFor(rec))
		if rec.ServiceName != "" {
			fmt.Fprintf(&modifiedEmail, "X-Subscription-Service: %s\r\n", rec.ServiceName)
		}
	}

	// Optionally tag the subject of recognized subscription notices
	tagged := classifyErr == nil && rec.Accepted()
	if tagged && s.filter.modifySubject && s.filter.subjectPrefix != "" {
		originalSubject := msg.Header.Get("Subject")

		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}

		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			fmt.Fprintf(&modifiedEmail, "Subject: %s\r\n", s.filter.subjectPrefix+decodedSubject)

			// Skip the original subject when writing other headers
			for key, values := range msg.Header {
				if !strings.EqualFold(key, "Subject") {
					for _, value := range values {
						fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
					}
				}
			}
		} else {
			for key, values := range msg.Header {
				for _, value := range values {
					fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
				}
			}
		}
	} else {
		// No subject modification needed, write all headers as is
		for key, values := range msg.Header {
			for _, value := range values {
				fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
			}
		}
	}

	// End of headers
	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Find where the original body starts in the raw data
	bodyStartIndex := bytes.Index(rawDataCopy, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawDataCopy, []byte("\n\n"))
		if bodyStartIndex == -1 {
			// Fallback: if we can't find the body separator, just use the original message body
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.filter.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			// Write the original body (preserving all MIME parts and attachments)
			modifiedEmail.Write(rawDataCopy[bodyStartIndex+2:])
		}
	} else {
		// Write the original body (preserving all MIME parts and attachments)
		modifiedEmail.Write(rawDataCopy[bodyStartIndex+4:])
	}

	if s.filter.postfixEnabled {
		// Send the email back to Postfix on the configured port
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	if classifyErr == nil {
		s.filter.logger.Info("Processed email",
			zap.String("from", s.sender),
			zap.String("sender_domain", senderDomain),
			zap.Bool("subscription", rec.Accepted()),
			zap.Int("score", rec.TotalScore),
			zap.String("level", rec.Level.String()))
	}

	return nil
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
