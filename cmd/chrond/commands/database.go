package commands

import (
	"database/sql"

	"github.com/chrond/chrond/config"
	"github.com/chrond/chrond/db"
	"github.com/chrond/chrond/errors"
	"github.com/chrond/chrond/logger"
	"github.com/chrond/chrond/mail"
	"github.com/chrond/chrond/schedule"
)

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, the configured path is used.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// newMailer builds the configured mail transport. With mail disabled the
// messages go to the log instead.
func newMailer(cfg *config.Config) schedule.Mailer {
	if !cfg.Mail.Enabled {
		return mail.NewLoggingMailer(logger.Logger)
	}
	return mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
}

// newRunner wires the standard runner from configuration.
func newRunner(cfg *config.Config, database *sql.DB, registry *schedule.CommandRegistry) (*schedule.Runner, *schedule.Store) {
	store := schedule.NewStore(database)
	if cfg.Scheduler.DueBatchLimit > 0 {
		store.DueLimit = cfg.Scheduler.DueBatchLimit
	}

	notifier := schedule.NewNotifier(newMailer(cfg), cfg.Mail.From, cfg.Mail.SubjectPrefix, cfg.Site.BaseURL)
	runner := schedule.NewRunner(
		store,
		schedule.NewCommandExecutor(registry),
		schedule.NewRecorder(schedule.NewLogStore(database)),
		notifier,
		logger.Logger,
	)
	return runner, store
}
