// SPDX-License-Identifier: GPL-3.0-or-later
package discovery

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/mailbutler/go-imap-butler/domain"
	"github.com/mailbutler/go-imap-butler/log"

	"github.com/sirupsen/logrus"
)

const DiscoveryTimeout = 20 * time.Second

// SettingsDiscovery guesses IMAP connection settings for an email address via
// a third-party settings directory. Lookups are best-effort: every failure
// mode degrades to "nothing found".
type SettingsDiscovery struct {
	client  *http.Client
	baseUrl string

	l *logrus.Logger
}

func NewSettingsDiscovery(baseUrl string) *SettingsDiscovery {
	return &SettingsDiscovery{
		client: &http.Client{
			Timeout: DiscoveryTimeout,
		},
		baseUrl: baseUrl,
		l:       log.Logger(log.LOG_DISCOVERY),
	}
}

type settingsResponse struct {
	Settings []struct {
		Protocol string `json:"protocol"`
		Address  string `json:"address"`
		Port     int    `json:"port"`
	} `json:"settings"`
}

func (sd *SettingsDiscovery) Discover(emailAddress string) *domain.ImapSettings {
	baseLogger := sd.l.WithField("email", emailAddress)

	resp, err := sd.client.Get(sd.baseUrl + "?q=" + url.QueryEscape(emailAddress))
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not query settings directory")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		baseLogger.WithField("status", resp.StatusCode).Debug("Settings directory returned no settings")
		return nil
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not read settings response")
		return nil
	}

	settingsResponse := &settingsResponse{}
	err = json.Unmarshal(body, settingsResponse)
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not deserialize settings response")
		return nil
	}

	for _, s := range settingsResponse.Settings {
		if s.Protocol == "IMAP" {
			baseLogger.WithFields(logrus.Fields{"host": s.Address, "port": s.Port}).Debug("Discovered imap settings")
			return &domain.ImapSettings{
				Host: s.Address,
				Port: s.Port,
			}
		}
	}

	baseLogger.Debug("No imap entry in settings response")
	return nil
}
