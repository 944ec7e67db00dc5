// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mailbutler/go-imap-butler/bot"
	"github.com/mailbutler/go-imap-butler/config"
	"github.com/mailbutler/go-imap-butler/discovery"
	"github.com/mailbutler/go-imap-butler/log"
	"github.com/mailbutler/go-imap-butler/mailbox"
	"github.com/mailbutler/go-imap-butler/persistence"
)

// consoleUser is the user id for the built-in stdin transport.
const consoleUser = int64(0)

func main() {
	log.InitLogging("debug")
	logger := log.Logger(log.LOG_MAIN)

	conf, err := config.ReadConfig("config.toml")
	if err != nil {
		logger.WithField("error", err).Fatal("Could not load config")
	}

	if conf.Loglevel != nil {
		log.SetLogLevel(*conf.Loglevel)
	}

	p, err := persistence.NewPersistence(conf.Database)
	if err != nil {
		logger.WithField("error", err).Fatal("Could not connect to database")
	}
	defer p.Close()

	imapMailbox := mailbox.NewImapMailbox(time.Duration(conf.ImapTimeoutSeconds) * time.Second)
	settingsDiscovery := discovery.NewSettingsDiscovery(conf.DiscoveryUrl)

	butler := bot.NewButler(p, imapMailbox, settingsDiscovery, conf.FetchLimit)
	dispatcher := bot.NewDispatcher(butler, &consoleReplier{})
	defer dispatcher.Stop()

	logger.WithField("commands", bot.MenuCommands()).Info("Ready, reading messages from stdin")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		dispatcher.Dispatch(consoleUser, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		logger.WithField("error", err).Fatal("Could not read from stdin")
	}
}

// consoleReplier prints replies to stdout. The real chat transport plugs in
// through the same bot.Replier interface.
type consoleReplier struct{}

func (cr *consoleReplier) Reply(userID int64, reply bot.Reply) error {
	_, err := fmt.Println(reply.Text)
	if err != nil {
		return err
	}

	if reply.ShowMenu {
		_, err = fmt.Println("[" + strings.Join(bot.MenuCommands(), " | ") + "]")
	}
	return err
}
