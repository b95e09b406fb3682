package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "github.com/Pankaj72885/care.xyz/internal/auth/service"
	bookcons "github.com/Pankaj72885/care.xyz/internal/booking/consumer"
	bookrepo "github.com/Pankaj72885/care.xyz/internal/booking/repository"
	booksvc "github.com/Pankaj72885/care.xyz/internal/booking/service"
	catrepo "github.com/Pankaj72885/care.xyz/internal/catalog/repository"
	catsvc "github.com/Pankaj72885/care.xyz/internal/catalog/service"
	"github.com/Pankaj72885/care.xyz/internal/gateway"
	"github.com/Pankaj72885/care.xyz/internal/gateway/handlers"
	payhttp "github.com/Pankaj72885/care.xyz/internal/payment/http"
	omisecli "github.com/Pankaj72885/care.xyz/internal/payment/omise"
	paysvc "github.com/Pankaj72885/care.xyz/internal/payment/service"
	"github.com/Pankaj72885/care.xyz/internal/report/cache"
	repsvc "github.com/Pankaj72885/care.xyz/internal/report/service"
	userrepo "github.com/Pankaj72885/care.xyz/internal/user/repository"
	usersvc "github.com/Pankaj72885/care.xyz/internal/user/service"
	"github.com/Pankaj72885/care.xyz/pkg/config"
	"github.com/Pankaj72885/care.xyz/pkg/db"
	"github.com/Pankaj72885/care.xyz/pkg/mq"
	"github.com/Pankaj72885/care.xyz/pkg/obs"

	"github.com/omise/omise-go"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("care-api")

	gdb := db.Open(cfg.DatabaseDSN)
	users := userrepo.NewUserRepo(gdb)
	services := catrepo.NewServiceRepo(gdb)
	bookings := bookrepo.NewBookingRepo(gdb)
	must(0, users.Migrate())
	must(0, services.Migrate())
	must(0, bookings.Migrate())

	bookingPub := must(mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange))
	defer bookingPub.Close()
	paymentPub := must(mq.NewPublisher(cfg.RabbitURL, cfg.PaymentExchange))
	defer paymentPub.Close()

	reportCache := cache.New(cfg.RedisAddr, time.Duration(cfg.ReportCacheTTLSec)*time.Second)
	defer reportCache.Close()

	// services
	auth := authsvc.NewAuthSvc(users, cfg.JWTSecret,
		time.Duration(cfg.JWTExpireMin)*time.Minute,
		time.Duration(cfg.RefreshExpireHr)*time.Hour)
	var google *authsvc.GoogleProvider
	if cfg.GoogleClientID != "" {
		google = authsvc.NewGoogleProvider(auth,
			authsvc.NewGoogleExchanger(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL))
	}
	profile := usersvc.NewUserSvc(users)
	catalog := catsvc.NewCatalogSvc(services)
	booking := booksvc.NewBookingSvc(bookings, services, bookingPub, reportCache)

	var omc *omise.Client
	var webhook http.Handler
	if cfg.OmisePublicKey != "" && cfg.OmiseSecretKey != "" {
		omc = must(omisecli.NewOmiseClient(cfg.OmisePublicKey, cfg.OmiseSecretKey))
		ws := payhttp.NewWebhookServer(&payhttp.OmiseRetriever{Client: omc}, paymentPub)
		webhook = http.HandlerFunc(ws.Handler)
	} else {
		log.Println("[api] omise keys not set, payment endpoints disabled")
	}
	payments := paysvc.NewPaymentSvc(omc, paymentPub, bookings)
	payments.SetReturnURI(cfg.AppBaseURL + "/payments/return")
	reports := repsvc.NewReportSvc(gdb, reportCache)

	// in-process consumer: payment.paid -> CONFIRMED + payment row
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paymentCons := must(mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.PaymentQueue, "payment.paid"))
	defer paymentCons.Close()
	pc := bookcons.NewPaymentConsumer(bookings, paymentCons, bookingPub, reportCache)
	must(0, pc.Run(ctx))
	log.Println("[api] payment consumer started (payment.paid)")

	r := gateway.Router(gateway.Deps{
		Auth:      handlers.NewAuthHandler(auth, google),
		User:      handlers.NewUserHandler(profile),
		Catalog:   handlers.NewCatalogHandler(catalog),
		Booking:   handlers.NewBookingHandler(booking, bookings),
		Payment:   handlers.NewPaymentHandler(payments, bookings),
		Report:    handlers.NewReportHandler(reports),
		Webhook:   webhook,
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Println("[api] listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	_ = shutdownTracer(shutCtx)
	log.Println("[api] stopped")
}
