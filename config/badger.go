package config

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog/log"
)

func NewBadger(cfg *Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.BadgerDir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", cfg.BadgerDir, err)
	}
	return db, nil
}

// CloseBadger compacts and closes db.
func CloseBadger(db *badger.DB) {
	log.Err(db.Flatten(4)).Msg("flatten on stop")
	if err := db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
		log.Err(err).Msg("run value log gc")
	}
	if err := db.Close(); err != nil {
		log.Err(err).Msg("failed to close badger db")
	}
}
