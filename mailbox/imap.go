// SPDX-License-Identifier: GPL-3.0-or-later
package mailbox

import (
	"fmt"
	"io/ioutil"
	"net"
	"strconv"
	"time"

	"github.com/mailbutler/go-imap-butler/domain"
	"github.com/mailbutler/go-imap-butler/log"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

const FetchBuffer = 10

// ImapMailbox reads recent mail over IMAP with implicit TLS. Connections are
// opened per FetchRecentSummaries call and closed with a best-effort logout.
type ImapMailbox struct {
	timeout time.Duration

	l *logrus.Logger
}

func NewImapMailbox(timeout time.Duration) *ImapMailbox {
	return &ImapMailbox{
		timeout: timeout,
		l:       log.Logger(log.LOG_MAILBOX),
	}
}

func (im *ImapMailbox) FetchRecentSummaries(host string, port int, address, secret string, limit int) ([]*domain.EmailSummary, error) {
	server := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: im.timeout}
	imapClient, err := client.DialWithDialerTLS(dialer, server, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not dial to imap %s: %v", domain.ErrConnection, server, err)
	}
	imapClient.Timeout = im.timeout
	defer func() {
		// Best-effort, the summaries are already in memory at this point.
		logoutErr := imapClient.Logout()
		if logoutErr != nil {
			im.l.WithFields(logrus.Fields{"server": server, "error": logoutErr}).Debug("Logout failed")
		}
	}()

	err = imapClient.Login(address, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: could not login as %s: %v", domain.ErrAuth, address, err)
	}

	baseLogger := im.l.WithFields(logrus.Fields{"server": server, "user": address})
	baseLogger.Debug("Logged in to server")

	_, err = imapClient.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("%w: could not select inbox: %v", domain.ErrProtocol, err)
	}

	seqNums, err := imapClient.Search(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("%w: could not list inbox: %v", domain.ErrProtocol, err)
	}

	if len(seqNums) == 0 {
		baseLogger.Info("Inbox contains no mails")
		return []*domain.EmailSummary{}, nil
	}

	if len(seqNums) > limit {
		seqNums = seqNums[len(seqNums)-limit:]
	}

	start := time.Now()
	rawMails, err := im.fetchRaw(imapClient, seqNums)
	if err != nil {
		return nil, err
	}
	baseLogger.WithFields(logrus.Fields{"mails": len(seqNums), "duration": time.Since(start)}).Debug("Fetched mails")

	// Newest last on the wire, newest first for the reader.
	summaries := []*domain.EmailSummary{}
	for i := len(seqNums) - 1; i >= 0; i-- {
		raw, ok := rawMails[seqNums[i]]
		if !ok {
			return nil, fmt.Errorf("%w: server did not return message %d", domain.ErrProtocol, seqNums[i])
		}

		summary, err := Summarize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: could not summarize message %d: %v", domain.ErrProtocol, seqNums[i], err)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (im *ImapMailbox) fetchRaw(imapClient *client.Client, seqNums []uint32) (map[uint32][]byte, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(seqNums...)

	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}
	fetchItems := []imap.FetchItem{fullBodySection.FetchItem()}

	messages := make(chan *imap.Message, FetchBuffer)
	done := make(chan error, 1)
	go func() {
		done <- imapClient.Fetch(seqset, fetchItems, messages)
	}()

	rawMails := map[uint32][]byte{}
	for msg := range messages {
		r := msg.GetBody(fullBodySection)
		if r == nil {
			return nil, fmt.Errorf("%w: message %d has no body section", domain.ErrProtocol, msg.SeqNum)
		}

		rawMail, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: could not read mail body: %v", domain.ErrProtocol, err)
		}

		rawMails[msg.SeqNum] = rawMail
	}

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("%w: could not fetch mails: %v", domain.ErrProtocol, err)
	}

	return rawMails, nil
}
