// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/discovery.go -package=mocks . Discovery
type ImapSettings struct {
	Host string
	Port int
}

type Discovery interface {
	// Discover looks up IMAP settings for an email address. It returns nil
	// when nothing was found; lookup failures are treated the same way.
	Discover(emailAddress string) *ImapSettings
}
