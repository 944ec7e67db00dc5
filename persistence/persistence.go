// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mailbutler/go-imap-butler/domain"
	"github.com/mailbutler/go-imap-butler/log"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-create-users",
			Up: []string{
				`CREATE TABLE users (
					user_id INTEGER PRIMARY KEY,
					imap_server TEXT,
					imap_port INTEGER,
					email TEXT,
					password TEXT
				)`,
			},
			Down: []string{`DROP TABLE users`},
		},
	},
}

type Persistence struct {
	db *sqlx.DB
	l  *logrus.Logger
}

func NewPersistence(datasource string) (*Persistence, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	// Serializes writes, including concurrent upserts for the same user.
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_PERSISTENCE)
	l.WithField("file", datasource).Info("Connected")

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db: db,
		l:  l,
	}, nil
}

func (p *Persistence) Close() error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.l.Info("Disconnected")
	return nil
}

func (p *Persistence) GetUser(userID int64) (*domain.UserRecord, error) {
	dbUser := struct {
		UserID     int64   `db:"user_id"`
		ImapServer *string `db:"imap_server"`
		ImapPort   *int    `db:"imap_port"`
		Email      *string `db:"email"`
		Password   *string `db:"password"`
	}{}

	err := p.db.Get(
		&dbUser,
		`SELECT user_id, imap_server, imap_port, email, password FROM users WHERE user_id = ?`,
		userID,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return &domain.UserRecord{
		UserID:       dbUser.UserID,
		ImapServer:   dbUser.ImapServer,
		ImapPort:     dbUser.ImapPort,
		EmailAddress: dbUser.Email,
		Password:     dbUser.Password,
	}, nil
}

func (p *Persistence) SaveUser(record *domain.UserRecord) error {
	_, err := p.db.Exec(
		"INSERT OR REPLACE INTO users (user_id, imap_server, imap_port, email, password) VALUES (?, ?, ?, ?, ?)",
		record.UserID,
		record.ImapServer,
		record.ImapPort,
		record.EmailAddress,
		record.Password,
	)

	if err != nil {
		return fmt.Errorf("could not save user: %w", err)
	}

	p.l.WithFields(logrus.Fields{"UserID": record.UserID, "ImapConfigured": record.ImapConfigured(), "CredentialsConfigured": record.CredentialsConfigured()}).Info("Persisted user")
	return nil
}

func (p *Persistence) DeleteUser(userID int64) error {
	_, err := p.db.Exec(
		"DELETE FROM users WHERE user_id = ?",
		userID,
	)

	if err != nil {
		return fmt.Errorf("could not delete user: %w", err)
	}

	p.l.WithField("UserID", userID).Info("Deleted user")
	return nil
}
