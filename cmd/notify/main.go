package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pankaj72885/care.xyz/internal/notification/notifier"
	"github.com/Pankaj72885/care.xyz/internal/notification/worker"
	"github.com/Pankaj72885/care.xyz/pkg/config"
	"github.com/Pankaj72885/care.xyz/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gdb := db.Open(cfg.DatabaseDSN)

	var n notifier.Notifier = notifier.NewConsole()
	if cfg.ResendAPIKey != "" {
		n = notifier.NewResend(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Println("[notify] RESEND_API_KEY not set, emails go to the log")
	}

	wcfg := worker.Config{
		RabbitURL:   cfg.RabbitURL,
		Exchanges:   []string{cfg.BookingExchange, cfg.PaymentExchange},
		Queue:       "notification.q",
		Bindings:    []string{"booking.*", "payment.*"},
		Prefetch:    16,
		UseDLX:      true,
		DLXName:     "notification.dlx",
		DLXQueue:    "notification.q.dlq",
		ServiceName: "care-notify",
	}
	cons := worker.NewConsumer(wcfg, n, worker.NewDBLoader(gdb))

	for {
		if err := cons.Connect(); err != nil {
			log.Printf("[notify] connect failed: %v; retry in 2s", err)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Printf("[notify] run error: %v", err)
		}
	}()

	log.Printf("[notify] started. queue=%s exchanges=%v bindings=%v",
		wcfg.Queue, wcfg.Exchanges, wcfg.Bindings)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	time.Sleep(200 * time.Millisecond)
}
