package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"studyplanner/internal/config"
	"studyplanner/internal/notify"
	"studyplanner/internal/repository"
	"studyplanner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo, err := repository.NewTaskRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("task store: %v", err)
	}
	gamificationRepo, err := repository.NewGamificationRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("gamification store: %v", err)
	}

	notifier := notify.NewDesktopNotifier()

	// Each remote channel is enabled only when its credentials are set.
	var email service.EmailSender
	if cfg.SMTPHost != "" && cfg.SenderEmail != "" {
		email = notify.NewEmailSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SenderEmail)
	}
	var sms service.SMSSender
	if cfg.TwilioSID != "" && cfg.TwilioToken != "" && cfg.TwilioFrom != "" {
		sms = notify.NewSMSSink(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, &http.Client{Timeout: cfg.DeliveryTimeout})
	}
	var chat service.ChatSender
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramSink(cfg.TelegramToken)
		if err != nil {
			log.Printf("telegram disabled: %v", err)
		} else {
			chat = tg
		}
	}

	dispatcher := service.NewReminderDispatcher(taskRepo, notifier, email, sms, chat, cfg.DeliveryWorkers, cfg.DeliveryTimeout)
	defer dispatcher.Shutdown()

	gamificationSvc := service.NewGamificationService(gamificationRepo)
	attachmentsDir := filepath.Join(cfg.DataDir, "attachments")
	taskSvc := service.NewTaskService(taskRepo, gamificationSvc, dispatcher, attachmentsDir)

	if cfg.ActiveUser != "" {
		user, err := userRepo.FindByUsername(ctx, cfg.ActiveUser)
		if err != nil {
			log.Printf("no session: %v", err)
		} else {
			dispatcher.SetActiveUser(user)
			log.Printf("session started for %s", user.Username)

			if classified, err := taskSvc.Classified(user, time.Now()); err == nil {
				log.Printf("loaded %d task(s)", len(classified))
			}
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, func() {
		if err := dispatcher.Scan(time.Now()); err != nil {
			log.Printf("reminder scan: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule reminder scan: %v", err)
	}
	if _, err := scheduler.ScheduleDaily(cfg.SummaryTime, func() {
		summary, err := dispatcher.Summary(time.Now())
		if err != nil {
			log.Printf("summary: %v", err)
			return
		}
		if summary != "" {
			log.Printf("daily summary:\n%s", summary)
		}
	}); err != nil {
		log.Fatalf("schedule summary: %v", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Study planner engine started.")
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
