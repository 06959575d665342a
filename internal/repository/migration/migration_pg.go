package migration

import (
	"database/sql"
	"os"

	"go.uber.org/zap"
)

func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	content, err := os.ReadFile("internal/repository/migration/init.sql")
	if err != nil {
		logger.Warn("could not read migration file", zap.Error(err))
		return nil
	}

	if _, err := db.Exec(string(content)); err != nil {
		return err
	}

	logger.Info("migrations completed")
	return nil
}
