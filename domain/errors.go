// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "errors"

// Error kinds for the mailbox pipeline and the credential dialogue. Callers
// match them with errors.Is on wrapped errors.
var (
	ErrConnection    = errors.New("could not reach mail server")
	ErrAuth          = errors.New("mail server rejected credentials")
	ErrProtocol      = errors.New("unexpected mail server response")
	ErrDecode        = errors.New("could not decode message")
	ErrValidation    = errors.New("invalid input")
	ErrNotConfigured = errors.New("mailbox not configured")
)
