// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/persistence.go -package=mocks . Persistence
type UserRecord struct {
	UserID       int64
	ImapServer   *string
	ImapPort     *int
	EmailAddress *string
	Password     *string
}

// ImapConfigured reports whether the IMAP half of the record is set.
func (r *UserRecord) ImapConfigured() bool {
	return r != nil && r.ImapServer != nil && r.ImapPort != nil
}

// CredentialsConfigured reports whether the login half of the record is set.
func (r *UserRecord) CredentialsConfigured() bool {
	return r != nil && r.EmailAddress != nil && r.Password != nil
}

// Complete reports whether a login can be attempted.
func (r *UserRecord) Complete() bool {
	return r.ImapConfigured() && r.CredentialsConfigured()
}

type Persistence interface {
	Close() error
	// GetUser returns nil without error when no record exists.
	GetUser(userID int64) (*UserRecord, error)
	// SaveUser overwrites or inserts the full record by UserID.
	SaveUser(record *UserRecord) error
	DeleteUser(userID int64) error
}
