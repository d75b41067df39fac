package app

import (
	"log/slog"
	"os"

	"github.com/ItsCrotix/NOR-Backend/internal/identity"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.identity.enabled") {
		slog.Warn("module identity disabled")
		return
	}

	if err := identity.New(identity.Dependency{
		Config:       a.config,
		Instrument:   a.ins,
		UID:          a.uid,
		UUID:         a.uuid,
		Bcrypt:       a.bcrypt,
		HMAC:         a.hmac,
		MFAEncryptor: a.mfaEncryptor,
		BackupCodes:  a.backupCodes,
		Clock:        a.clock,
		Validator:    a.validator,
		Router:       a.router,
		Totp:         a.totp,
		DBConn:       a.dbConn,
		Idempotency:  a.idemp,
		Messaging:    a.messaging,
		Goroutine:    a.goroutine,
		Tokens:       a.tokens,
	}); err != nil {
		slog.Error("failed to init module identity", "error", err)
		os.Exit(1)
	}
}
