package gmailclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"

	"github.com/goliatone/go-staffdesk/pkg/email"
)

var _ email.Sender = (*Client)(nil)

// Send delivers msg, waiting out the throttle interval first.
func (c *Client) Send(ctx context.Context, msg email.Message) error {
	raw, err := BuildRaw(c.from, msg)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if err := c.wait(ctx); err != nil {
		return fmt.Errorf("gmailclient: %w", err)
	}

	sent, err := c.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	c.lastSendTime = time.Now()
	if err != nil {
		return fmt.Errorf("gmailclient: send email: %w", err)
	}

	c.logger.Debug("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("gmail_id", sent.Id))
	return nil
}

// BuildRaw renders msg as an RFC 5322 message. Messages with both HTML and
// text bodies become multipart/alternative.
func BuildRaw(from string, msg email.Message) ([]byte, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, errors.New("gmailclient: recipient is required")
	}
	if msg.HTML == "" && msg.Text == "" {
		return nil, errors.New("gmailclient: message has no body")
	}

	var buf bytes.Buffer
	if from != "" {
		writeHeader(&buf, "From", from)
	}
	writeHeader(&buf, "To", msg.To)
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&buf, "MIME-Version", "1.0")

	switch {
	case msg.HTML == "":
		return singlePart(&buf, "text/plain", msg.Text)
	case msg.Text == "":
		return singlePart(&buf, "text/html", msg.HTML)
	}

	parts := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{
		"boundary": parts.Boundary(),
	}))
	buf.WriteString("\r\n")

	for _, body := range []struct{ mediaType, content string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		part, err := parts.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {body.mediaType + "; charset=utf-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("gmailclient: create %s part: %w", body.mediaType, err)
		}
		if err := writeQuoted(part, body.content); err != nil {
			return nil, err
		}
	}
	if err := parts.Close(); err != nil {
		return nil, fmt.Errorf("gmailclient: close multipart: %w", err)
	}
	return buf.Bytes(), nil
}

func singlePart(buf *bytes.Buffer, mediaType, content string) ([]byte, error) {
	writeHeader(buf, "Content-Type", mediaType+"; charset=utf-8")
	writeHeader(buf, "Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")
	if err := writeQuoted(buf, content); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQuoted(w io.Writer, content string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("gmailclient: encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("gmailclient: encode body: %w", err)
	}
	return nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	buf.WriteString(key + ": " + value + "\r\n")
}
