package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/yogapass/internal/auth"
)

func (a *App) initModules() {
	dep := auth.Dependency{
		DBConn:     a.dbConn,
		Goroutine:  a.goroutine,
		Cron:       a.scheduler,
		Router:     a.router,
		Messaging:  a.messaging,
		SMS:        a.sms,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		Token:      a.token,
		HMAC:       a.hmac,
		Code:       a.code,
		Clock:      a.clock,
		Validator:  a.validator,
		JWT:        a.jwt,
	}
	// a nil *redis.Client must not become a non-nil interface
	if a.cacheConn != nil {
		dep.CacheConn = a.cacheConn
		dep.Idempotency = a.idemp
	}

	if err := auth.New(dep); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}
}
