// SPDX-License-Identifier: GPL-3.0-or-later
package mailbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	stdmail "net/mail"
	"strings"

	"github.com/mailbutler/go-imap-butler/domain"

	"github.com/emersion/go-message/charset"
	"github.com/jaytaylor/html2text"
)

// extractBody selects a textual representation of a message. Multipart
// messages yield the first text/plain part; when none exists, the first
// text/html part is converted to plain text. Single-part messages are decoded
// directly.
func extractBody(rawMail []byte) (string, error) {
	msg, err := stdmail.ReadMessage(bytes.NewReader(rawMail))
	if err != nil {
		return "", fmt.Errorf("%w: could not parse mail: %v", domain.ErrDecode, err)
	}

	mediaType := "text/plain"
	params := map[string]string{}
	contentType := msg.Header.Get("Content-Type")
	if len(contentType) > 0 {
		mediaType, params, err = mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("%w: could not parse content type: %v", domain.ErrDecode, err)
		}
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return decodePart(msg.Header.Get("Content-Transfer-Encoding"), params["charset"], msg.Body)
	}

	plain, html, err := scanParts(multipart.NewReader(msg.Body, params["boundary"]))
	if err != nil {
		return "", err
	}

	if plain != nil {
		return *plain, nil
	}

	if html != nil {
		text, err := html2text.FromString(*html)
		if err != nil {
			return "", fmt.Errorf("%w: could not convert html part: %v", domain.ErrDecode, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: no text part found", domain.ErrDecode)
}

// scanParts walks parts in order, descending into nested multiparts. It stops
// as soon as a text/plain part is found and otherwise remembers the first
// text/html part.
func scanParts(mr *multipart.Reader) (plain, html *string, err error) {
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, html, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: could not walk parts: %v", domain.ErrDecode, err)
		}

		mediaType, params, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			nestedPlain, nestedHtml, err := scanParts(multipart.NewReader(p, params["boundary"]))
			if err != nil {
				return nil, nil, err
			}
			if nestedPlain != nil {
				return nestedPlain, nil, nil
			}
			if html == nil {
				html = nestedHtml
			}
		case mediaType == "text/plain":
			text, err := decodePart(p.Header.Get("Content-Transfer-Encoding"), params["charset"], p)
			if err != nil {
				return nil, nil, err
			}
			return &text, nil, nil
		case mediaType == "text/html":
			if html != nil {
				continue
			}
			text, err := decodePart(p.Header.Get("Content-Transfer-Encoding"), params["charset"], p)
			if err != nil {
				return nil, nil, err
			}
			html = &text
		}
	}
}

func decodePart(transferEncoding, charsetName string, body io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	if len(charsetName) > 0 {
		converted, err := charset.Reader(strings.ToLower(charsetName), body)
		if err != nil {
			return "", fmt.Errorf("%w: unsupported charset %s: %v", domain.ErrDecode, charsetName, err)
		}
		body = converted
	}

	payload, err := ioutil.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: could not decode payload: %v", domain.ErrDecode, err)
	}

	return string(payload), nil
}
