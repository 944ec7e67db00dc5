// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/mailbox.go -package=mocks . MailboxClient
type EmailSummary struct {
	Sender  string
	Subject string
	Body    string
}

type MailboxClient interface {
	// FetchRecentSummaries returns up to limit summaries of the newest inbox
	// messages, newest first. The connection is opened and closed per call.
	FetchRecentSummaries(host string, port int, address, secret string, limit int) ([]*EmailSummary, error)
}
