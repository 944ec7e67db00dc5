// SPDX-License-Identifier: GPL-3.0-or-later
package bot

import (
	"fmt"
	"io/ioutil"
	"testing"

	"github.com/mailbutler/go-imap-butler/domain"
	"github.com/mailbutler/go-imap-butler/domain/mocks"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testUser = int64(42)

func setupButler(t *testing.T) (*gomock.Controller, *Butler, *mocks.MockPersistence, *mocks.MockMailboxClient, *mocks.MockDiscovery) {
	ctrl := gomock.NewController(t)

	persistence := mocks.NewMockPersistence(ctrl)
	mailboxClient := mocks.NewMockMailboxClient(ctrl)
	settingsDiscovery := mocks.NewMockDiscovery(ctrl)

	butler := &Butler{
		persistence: persistence,
		mailbox:     mailboxClient,
		discovery:   settingsDiscovery,
		sessions:    NewSessions(),
		fetchLimit:  5,
		l:           nullLogger(),
	}

	return ctrl, butler, persistence, mailboxClient, settingsDiscovery
}

func TestSetImapDialogue(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(nil, nil)

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:     testUser,
			ImapServer: str("imap.example.com"),
			ImapPort:   num(993),
		})).
		Return(nil)

	replies := butler.Handle(testUser, CmdSetImap)
	assert.Equal(t, []Reply{{Text: "Enter the IMAP server:"}}, replies)
	assert.Equal(t, StateAwaitImapServer, butler.sessions.State(testUser))

	replies = butler.Handle(testUser, "imap.example.com")
	assert.Equal(t, []Reply{{Text: "Now enter the IMAP server port:"}}, replies)
	assert.Equal(t, StateAwaitImapPort, butler.sessions.State(testUser))

	replies = butler.Handle(testUser, "993")
	assert.Equal(t, []Reply{{Text: "IMAP settings saved.", ShowMenu: true}}, replies)
	assert.Equal(t, StateIdle, butler.sessions.State(testUser))
}

func TestSetImapPreservesCredentials(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(&domain.UserRecord{
			UserID:       testUser,
			ImapServer:   str("old.example.com"),
			ImapPort:     num(143),
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		}, nil)

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:       testUser,
			ImapServer:   str("imap.example.com"),
			ImapPort:     num(993),
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		})).
		Return(nil)

	butler.Handle(testUser, CmdSetImap)
	butler.Handle(testUser, "imap.example.com")
	replies := butler.Handle(testUser, "993")
	assert.Equal(t, []Reply{{Text: "IMAP settings saved.", ShowMenu: true}}, replies)
}

func TestPortValidation(t *testing.T) {
	tests := []struct {
		name  string
		port  string
		valid bool
	}{
		{"letters", "abc", false},
		{"empty", "", false},
		{"zero", "0", false},
		{"negative", "-1", false},
		{"toolarge", "65536", false},
		{"decimal", "9.93", false},
		{"min", "1", true},
		{"max", "65535", true},
		{"common", "993", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, butler, persistence, _, _ := setupButler(t)
			defer ctrl.Finish()

			if tc.valid {
				persistence.EXPECT().GetUser(testUser).Return(nil, nil)
				persistence.EXPECT().SaveUser(gomock.Any()).Return(nil)
			}

			butler.Handle(testUser, CmdSetImap)
			butler.Handle(testUser, "imap.example.com")
			replies := butler.Handle(testUser, tc.port)

			if tc.valid {
				assert.Equal(t, []Reply{{Text: "IMAP settings saved.", ShowMenu: true}}, replies)
				assert.Equal(t, StateIdle, butler.sessions.State(testUser))
			} else {
				assert.Equal(t, []Reply{{Text: "Port must be a number between 1 and 65535. Try again."}}, replies)
				assert.Equal(t, StateAwaitImapPort, butler.sessions.State(testUser))
			}
		})
	}
}

func TestLoginPassWithoutPriorRecord(t *testing.T) {
	ctrl, butler, persistence, _, settingsDiscovery := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(nil, nil)

	settingsDiscovery.EXPECT().
		Discover("alice@example.com").
		Return(nil)

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:       testUser,
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		})).
		Return(nil)

	butler.Handle(testUser, CmdSetLoginPass)
	replies := butler.Handle(testUser, "alice@example.com:hunter2")

	assert.Equal(t, []Reply{{Text: "IMAP could not be detected automatically, enter it manually.\nLogin and password saved.", ShowMenu: true}}, replies)
	assert.Equal(t, StateIdle, butler.sessions.State(testUser))
}

func TestLoginPassDiscoveryOverwritesImap(t *testing.T) {
	ctrl, butler, persistence, _, settingsDiscovery := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(&domain.UserRecord{
			UserID:     testUser,
			ImapServer: str("old.example.com"),
			ImapPort:   num(143),
		}, nil)

	settingsDiscovery.EXPECT().
		Discover("alice@example.com").
		Return(&domain.ImapSettings{Host: "imap.example.com", Port: 993})

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:       testUser,
			ImapServer:   str("imap.example.com"),
			ImapPort:     num(993),
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		})).
		Return(nil)

	butler.Handle(testUser, CmdSetLoginPass)
	replies := butler.Handle(testUser, "alice@example.com:hunter2")

	assert.Equal(t, []Reply{{Text: "Login and password saved.", ShowMenu: true}}, replies)
}

func TestLoginPassPreservesPriorImapWhenDiscoveryFails(t *testing.T) {
	ctrl, butler, persistence, _, settingsDiscovery := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(&domain.UserRecord{
			UserID:     testUser,
			ImapServer: str("imap.example.com"),
			ImapPort:   num(993),
		}, nil)

	settingsDiscovery.EXPECT().
		Discover("alice@example.com").
		Return(nil)

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:       testUser,
			ImapServer:   str("imap.example.com"),
			ImapPort:     num(993),
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		})).
		Return(nil)

	butler.Handle(testUser, CmdSetLoginPass)
	replies := butler.Handle(testUser, "alice@example.com:hunter2")

	assert.Equal(t, []Reply{{Text: "IMAP could not be detected automatically, enter it manually.\nLogin and password saved.", ShowMenu: true}}, replies)
}

func TestLoginPassTrimsWhitespace(t *testing.T) {
	ctrl, butler, persistence, _, settingsDiscovery := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().GetUser(testUser).Return(nil, nil)
	settingsDiscovery.EXPECT().Discover("alice@example.com").Return(nil)
	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:       testUser,
			EmailAddress: str("alice@example.com"),
			Password:     str("hunter2"),
		})).
		Return(nil)

	butler.Handle(testUser, CmdSetLoginPass)
	butler.Handle(testUser, "alice@example.com : hunter2")
}

func TestLoginPassFormatValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"nocolon", "alice@example.com hunter2"},
		{"twocolons", "alice@example.com:hun:ter2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, butler, _, _, _ := setupButler(t)
			defer ctrl.Finish()

			butler.Handle(testUser, CmdSetLoginPass)
			replies := butler.Handle(testUser, tc.text)

			assert.Equal(t, []Reply{{Text: "Invalid format, expected login:password. Try again."}}, replies)
			assert.Equal(t, StateAwaitLoginPass, butler.sessions.State(testUser))
		})
	}
}

func TestLoginRendersSummaries(t *testing.T) {
	ctrl, butler, persistence, mailboxClient, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(completeRecord(), nil)

	mailboxClient.EXPECT().
		FetchRecentSummaries("imap.example.com", 993, "alice@example.com", "hunter2", 5).
		Return([]*domain.EmailSummary{
			{Sender: "bob@example.com", Subject: "First", Body: "one..."},
			{Sender: "carol@example.com", Subject: "Second", Body: "two..."},
			{Sender: "dave@example.com", Subject: "Third", Body: "three..."},
		}, nil)

	replies := butler.Handle(testUser, CmdLogin)

	assert.Equal(t, []Reply{
		{Text: "Message 1:\n\nbob@example.com\nFirst\none..."},
		{Text: "Message 2:\n\ncarol@example.com\nSecond\ntwo..."},
		{Text: "Message 3:\n\ndave@example.com\nThird\nthree..."},
	}, replies)
}

func TestLoginEmptyInbox(t *testing.T) {
	ctrl, butler, persistence, mailboxClient, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().GetUser(testUser).Return(completeRecord(), nil)
	mailboxClient.EXPECT().
		FetchRecentSummaries("imap.example.com", 993, "alice@example.com", "hunter2", 5).
		Return([]*domain.EmailSummary{}, nil)

	replies := butler.Handle(testUser, CmdLogin)
	assert.Equal(t, []Reply{{Text: "No new mail."}}, replies)
}

func TestLoginMailboxFailure(t *testing.T) {
	ctrl, butler, persistence, mailboxClient, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().GetUser(testUser).Return(completeRecord(), nil)
	mailboxClient.EXPECT().
		FetchRecentSummaries("imap.example.com", 993, "alice@example.com", "hunter2", 5).
		Return(nil, fmt.Errorf("%w: could not login as alice@example.com: LOGIN failed", domain.ErrAuth))

	replies := butler.Handle(testUser, CmdLogin)
	assert.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Could not read the mailbox:")
	assert.Contains(t, replies[0].Text, "rejected credentials")
}

func TestLoginIncompleteRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   *domain.UserRecord
		expected string
	}{
		{"norecord", nil, "Set the IMAP server, login and password first."},
		{"imaponly", &domain.UserRecord{UserID: testUser, ImapServer: str("imap.example.com"), ImapPort: num(993)}, "Set your mailbox login and password first."},
		{"credentialsonly", &domain.UserRecord{UserID: testUser, EmailAddress: str("alice@example.com"), Password: str("hunter2")}, "Set the IMAP server first."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl, butler, persistence, _, _ := setupButler(t)
			defer ctrl.Finish()

			persistence.EXPECT().GetUser(testUser).Return(tc.record, nil)

			replies := butler.Handle(testUser, CmdLogin)
			assert.Equal(t, []Reply{{Text: tc.expected, ShowMenu: true}}, replies)
		})
	}
}

func TestResetCredentials(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(completeRecord(), nil)

	persistence.EXPECT().
		SaveUser(gomock.Eq(&domain.UserRecord{
			UserID:     testUser,
			ImapServer: str("imap.example.com"),
			ImapPort:   num(993),
		})).
		Return(nil)

	replies := butler.Handle(testUser, CmdResetCredentials)
	assert.Equal(t, []Reply{{Text: "Login and password cleared. Enter new ones.", ShowMenu: true}}, replies)
}

func TestResetCredentialsWithoutRecord(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().GetUser(testUser).Return(nil, nil)

	replies := butler.Handle(testUser, CmdResetCredentials)
	assert.Equal(t, []Reply{{Text: "No stored settings found."}}, replies)
}

func TestResetAll(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().DeleteUser(testUser).Return(nil)

	replies := butler.Handle(testUser, CmdResetAll)
	assert.Equal(t, []Reply{{Text: "All settings cleared. Set the IMAP server, login and password again.", ShowMenu: true}}, replies)
	assert.Equal(t, StateIdle, butler.sessions.State(testUser))
}

func TestCommandInterruptsDialogue(t *testing.T) {
	ctrl, butler, _, _, _ := setupButler(t)
	defer ctrl.Finish()

	butler.Handle(testUser, CmdSetImap)
	butler.Handle(testUser, "imap.example.com")
	assert.Equal(t, StateAwaitImapPort, butler.sessions.State(testUser))

	butler.Handle(testUser, CmdSetLoginPass)
	assert.Equal(t, StateAwaitLoginPass, butler.sessions.State(testUser))
}

func TestIdleFreeTextShowsMenu(t *testing.T) {
	ctrl, butler, _, _, _ := setupButler(t)
	defer ctrl.Finish()

	replies := butler.Handle(testUser, "what can you do?")
	assert.Equal(t, []Reply{{Text: "Choose an action:", ShowMenu: true}}, replies)
}

func TestStorageFailureAbortsDialogue(t *testing.T) {
	ctrl, butler, persistence, _, _ := setupButler(t)
	defer ctrl.Finish()

	persistence.EXPECT().
		GetUser(testUser).
		Return(nil, fmt.Errorf("could not query db: disk I/O error"))

	butler.Handle(testUser, CmdSetImap)
	butler.Handle(testUser, "imap.example.com")
	replies := butler.Handle(testUser, "993")

	assert.Equal(t, []Reply{{Text: "Could not access stored settings, try again later."}}, replies)
	assert.Equal(t, StateIdle, butler.sessions.State(testUser))
}

func completeRecord() *domain.UserRecord {
	return &domain.UserRecord{
		UserID:       testUser,
		ImapServer:   str("imap.example.com"),
		ImapPort:     num(993),
		EmailAddress: str("alice@example.com"),
		Password:     str("hunter2"),
	}
}

func str(s string) *string {
	return &s
}

func num(i int) *int {
	return &i
}

func nullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}
