package app

import (
	"log"
	"log/slog"

	"github.com/bmmjam/taptap/internal/config"
	"github.com/bmmjam/taptap/internal/delivery/bot"
	http_init "github.com/bmmjam/taptap/internal/delivery/http/init"
	http_result "github.com/bmmjam/taptap/internal/delivery/http/result"
	ws_summary "github.com/bmmjam/taptap/internal/delivery/ws/summary"
	"github.com/bmmjam/taptap/internal/infra/auditlog"
	"github.com/bmmjam/taptap/internal/infra/membership"
	"github.com/bmmjam/taptap/internal/infra/resultmem"
	"github.com/bmmjam/taptap/internal/infra/roomfile"
	usecase_room "github.com/bmmjam/taptap/internal/usecase/room"
	usecase_session "github.com/bmmjam/taptap/internal/usecase/session"
)

func Go(cfg *config.Config) {
	logger := slog.Default()

	roomRepository, err := roomfile.New(cfg.Storage.RoomsFile)
	if err != nil {
		log.Fatalf("failed to open room table: %v", err)
	}
	memberships := membership.New()
	results := resultmem.New()
	submissionsLog := auditlog.NewWriter(cfg.Storage.SubmissionsLogFile)
	datasetLog := auditlog.NewWriter(cfg.Storage.DatasetLogFile)

	hub := ws_summary.New(logger)

	roomUC := usecase_room.New(roomRepository)
	sessionUC := usecase_session.New(
		roomUC,
		memberships,
		results,
		cfg.Bot.Domain,
		usecase_session.WithAuditLog(submissionsLog),
		usecase_session.WithNotifier(hub),
		usecase_session.WithLogger(logger),
	)

	if cfg.Bot.Token != "" {
		tgBot, err := bot.New(cfg.Bot, sessionUC, logger)
		if err != nil {
			log.Fatalf("failed to start telegram bot: %v", err)
		}
		go tgBot.Start()
	} else {
		logger.Warn("BOT_TOKEN is empty, chat transport disabled")
	}

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_result.New(sessionUC, datasetLog, http_result.WithLogger(logger)))
	controllerPool.Add(ws_summary.NewController(hub, sessionUC))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
