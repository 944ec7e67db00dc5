// SPDX-License-Identifier: GPL-3.0-or-later
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mailbutler/go-imap-butler/domain"
	"github.com/mailbutler/go-imap-butler/log"

	"github.com/sirupsen/logrus"
)

const (
	CmdStart            = "/start"
	CmdLogin            = "login to mailbox"
	CmdSetImap          = "set IMAP"
	CmdSetLoginPass     = "set login and password"
	CmdResetCredentials = "reset login and password"
	CmdResetAll         = "reset all"
)

// MenuCommands is the fixed menu the chat transport renders below replies
// with ShowMenu set.
func MenuCommands() []string {
	return []string{CmdLogin, CmdSetImap, CmdSetLoginPass, CmdResetCredentials, CmdResetAll}
}

type Reply struct {
	Text     string
	ShowMenu bool
}

// Butler drives the credential-collection dialogue and the mailbox commands.
// Handle is not safe for concurrent calls with the same userID; the
// dispatcher serializes those.
type Butler struct {
	persistence domain.Persistence
	mailbox     domain.MailboxClient
	discovery   domain.Discovery
	sessions    *Sessions

	fetchLimit int

	l *logrus.Logger
}

func NewButler(persistence domain.Persistence, mailbox domain.MailboxClient, discovery domain.Discovery, fetchLimit int) *Butler {
	return &Butler{
		persistence: persistence,
		mailbox:     mailbox,
		discovery:   discovery,
		sessions:    NewSessions(),
		fetchLimit:  fetchLimit,
		l:           log.Logger(log.LOG_BOT),
	}
}

// Handle classifies an inbound message as a command or an awaited-field reply
// and returns the replies to send, in order.
func (b *Butler) Handle(userID int64, text string) []Reply {
	text = strings.TrimSpace(text)

	switch text {
	case CmdStart:
		b.sessions.Clear(userID)
		return []Reply{{Text: "Hi! I manage your mailbox. Choose an action:", ShowMenu: true}}
	case CmdSetImap:
		b.sessions.Await(userID, StateAwaitImapServer)
		return []Reply{{Text: "Enter the IMAP server:"}}
	case CmdSetLoginPass:
		b.sessions.Await(userID, StateAwaitLoginPass)
		return []Reply{{Text: "Enter your mailbox login and password as 'mail:pass':"}}
	case CmdLogin:
		return b.login(userID)
	case CmdResetCredentials:
		b.sessions.Clear(userID)
		return b.resetCredentials(userID)
	case CmdResetAll:
		b.sessions.Clear(userID)
		return b.resetAll(userID)
	}

	switch b.sessions.State(userID) {
	case StateAwaitImapServer:
		return b.processImapServer(userID, text)
	case StateAwaitImapPort:
		return b.processImapPort(userID, text)
	case StateAwaitLoginPass:
		return b.processLoginPass(userID, text)
	}

	return []Reply{{Text: "Choose an action:", ShowMenu: true}}
}

func (b *Butler) processImapServer(userID int64, text string) []Reply {
	b.sessions.SetPendingServer(userID, text)
	b.sessions.Await(userID, StateAwaitImapPort)
	return []Reply{{Text: "Now enter the IMAP server port:"}}
}

func (b *Butler) processImapPort(userID int64, text string) []Reply {
	port, err := strconv.Atoi(text)
	if err != nil || port < 1 || port > 65535 {
		b.l.WithFields(logrus.Fields{"user": userID, "input": text, "error": domain.ErrValidation}).Debug("Rejected port")
		// Stay in StateAwaitImapPort so the user can retry the field.
		return []Reply{{Text: "Port must be a number between 1 and 65535. Try again."}}
	}

	server := b.sessions.PendingServer(userID)

	prior, err := b.persistence.GetUser(userID)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	record := &domain.UserRecord{
		UserID:     userID,
		ImapServer: &server,
		ImapPort:   &port,
	}
	if prior != nil {
		record.EmailAddress = prior.EmailAddress
		record.Password = prior.Password
	}

	err = b.persistence.SaveUser(record)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	b.sessions.Clear(userID)
	return []Reply{{Text: "IMAP settings saved.", ShowMenu: true}}
}

func (b *Butler) processLoginPass(userID int64, text string) []Reply {
	if strings.Count(text, ":") != 1 {
		b.l.WithFields(logrus.Fields{"user": userID, "error": domain.ErrValidation}).Debug("Rejected login and password")
		return []Reply{{Text: "Invalid format, expected login:password. Try again."}}
	}

	parts := strings.SplitN(text, ":", 2)
	address := strings.TrimSpace(parts[0])
	secret := strings.TrimSpace(parts[1])

	prior, err := b.persistence.GetUser(userID)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	settings := b.discovery.Discover(address)

	record := &domain.UserRecord{
		UserID:       userID,
		EmailAddress: &address,
		Password:     &secret,
	}
	if settings != nil {
		record.ImapServer = &settings.Host
		record.ImapPort = &settings.Port
	} else if prior != nil {
		record.ImapServer = prior.ImapServer
		record.ImapPort = prior.ImapPort
	}

	err = b.persistence.SaveUser(record)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	b.sessions.Clear(userID)

	text = "Login and password saved."
	if settings == nil {
		text = "IMAP could not be detected automatically, enter it manually.\n" + text
	}
	return []Reply{{Text: text, ShowMenu: true}}
}

func (b *Butler) login(userID int64) []Reply {
	record, err := b.persistence.GetUser(userID)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	if !record.Complete() {
		b.l.WithFields(logrus.Fields{"user": userID, "error": domain.ErrNotConfigured}).Debug("Login without complete settings")
		switch {
		case record.ImapConfigured():
			return []Reply{{Text: "Set your mailbox login and password first.", ShowMenu: true}}
		case record.CredentialsConfigured():
			return []Reply{{Text: "Set the IMAP server first.", ShowMenu: true}}
		default:
			return []Reply{{Text: "Set the IMAP server, login and password first.", ShowMenu: true}}
		}
	}

	summaries, err := b.mailbox.FetchRecentSummaries(*record.ImapServer, *record.ImapPort, *record.EmailAddress, *record.Password, b.fetchLimit)
	if err != nil {
		b.l.WithFields(logrus.Fields{"user": userID, "error": err}).Warn("Could not fetch mail")
		return []Reply{{Text: fmt.Sprintf("Could not read the mailbox: %v", err)}}
	}

	if len(summaries) == 0 {
		return []Reply{{Text: "No new mail."}}
	}

	replies := []Reply{}
	for i, s := range summaries {
		replies = append(replies, Reply{
			Text: fmt.Sprintf("Message %d:\n\n%s\n%s\n%s", i+1, s.Sender, s.Subject, s.Body),
		})
	}
	return replies
}

func (b *Butler) resetCredentials(userID int64) []Reply {
	prior, err := b.persistence.GetUser(userID)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	if prior == nil {
		return []Reply{{Text: "No stored settings found."}}
	}

	record := &domain.UserRecord{
		UserID:     userID,
		ImapServer: prior.ImapServer,
		ImapPort:   prior.ImapPort,
	}
	err = b.persistence.SaveUser(record)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	return []Reply{{Text: "Login and password cleared. Enter new ones.", ShowMenu: true}}
}

func (b *Butler) resetAll(userID int64) []Reply {
	err := b.persistence.DeleteUser(userID)
	if err != nil {
		return b.storageFailure(userID, err)
	}

	return []Reply{{Text: "All settings cleared. Set the IMAP server, login and password again.", ShowMenu: true}}
}

func (b *Butler) storageFailure(userID int64, err error) []Reply {
	b.l.WithFields(logrus.Fields{"user": userID, "error": err}).Error("Could not access stored settings")
	b.sessions.Clear(userID)
	return []Reply{{Text: "Could not access stored settings, try again later."}}
}
