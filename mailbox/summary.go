// SPDX-License-Identifier: GPL-3.0-or-later
package mailbox

import (
	"bytes"
	"fmt"
	"mime"
	stdmail "net/mail"
	"regexp"
	"strings"

	"github.com/mailbutler/go-imap-butler/domain"

	"github.com/emersion/go-message/charset"
)

const BodyExcerptLength = 300

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Summarize turns a raw RFC822 message into a compact plain-text summary:
// sender header verbatim, decoded subject and a whitespace-collapsed body
// excerpt.
func Summarize(rawMail []byte) (*domain.EmailSummary, error) {
	msg, err := stdmail.ReadMessage(bytes.NewReader(rawMail))
	if err != nil {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}

	subject, err := decodeSubject(msg.Header.Get("Subject"))
	if err != nil {
		return nil, err
	}

	body, err := extractBody(rawMail)
	if err != nil {
		return nil, err
	}

	return &domain.EmailSummary{
		Sender:  msg.Header.Get("From"),
		Subject: subject,
		Body:    compactBody(body),
	}, nil
}

func decodeSubject(subjectHeader string) (string, error) {
	dec := &mime.WordDecoder{
		CharsetReader: charset.Reader,
	}
	subject, err := dec.DecodeHeader(subjectHeader)
	if err != nil {
		return "", fmt.Errorf("could not decode subject header: %w", err)
	}

	return subject, nil
}

func compactBody(body string) string {
	compact := strings.TrimSpace(whitespaceRuns.ReplaceAllString(body, " "))

	runes := []rune(compact)
	if len(runes) > BodyExcerptLength {
		runes = runes[:BodyExcerptLength]
	}

	return string(runes) + "..."
}
