package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"chantierplus/config"
	"chantierplus/internal/artifacts"
	"chantierplus/internal/auth"
	"chantierplus/internal/avenants"
	"chantierplus/internal/chantiers"
	"chantierplus/internal/company"
	"chantierplus/internal/db"
	"chantierplus/internal/health"
	"chantierplus/internal/logs"
	"chantierplus/internal/middleware"
	"chantierplus/internal/notify"
	"chantierplus/internal/pipeline"
	"chantierplus/internal/render"
	"chantierplus/internal/repo"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := db.Migrate(d); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	a.db = d

	/* 3) Артефакты и почта */
	fs := afero.NewOsFs()
	store, err := artifacts.NewStore(fs, a.cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("artifact store: %v", err)
	}
	mailer := a.mailer()

	users := repo.NewUserStore(a.db)
	companies := repo.NewCompanyStore(a.db)
	sites := repo.NewChantierStore(a.db)
	avs := repo.NewAvenantStore(a.db)

	tokens := auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	requireUser := middleware.Authenticate(auth.NewService(tokens, users))

	p := pipeline.New(pipeline.Deps{
		Chantiers:  sites,
		Companies:  companies,
		Avenants:   avs,
		Artifacts:  store,
		Renderer:   render.New(store),
		Recipients: notify.NewResolver(users),
		Dispatcher: notify.NewDispatcher(mailer),

		NotifyTimeout: a.cfg.Notify.Timeout,
	})

	/* 4) Router + middleware */
	a.Router = mux.NewRouter()
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 5) Health */
	health.RegisterRoutes(a.Router, health.DB(a.db), health.WritableDir(fs, store.Dir()))

	/* 6) API */
	auth.RegisterRoutes(a.Router, auth.NewHandler(auth.NewAccounts(companies, users, tokens)), requireUser)
	company.RegisterRoutes(a.Router, company.NewHandler(companies), requireUser)
	chantiers.RegisterRoutes(a.Router, chantiers.NewHandler(sites, avs), requireUser)
	avenants.RegisterRoutes(a.Router,
		avenants.NewHandler(p, artifacts.NewUploadGate(store, a.cfg.MaxUploadBytes())), requireUser)

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

// mailer — SMTP, если задан smtp.host, иначе письма только пишутся в лог.
func (a *App) mailer() notify.Mailer {
	s := a.cfg.SMTP
	if s.Host == "" {
		logs.Logger.Warn("smtp.host is empty: emails will be logged, not sent")
		return notify.LogMailer{}
	}
	m, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:      s.Host,
		Port:      s.Port,
		Username:  s.Username,
		Password:  s.Password,
		FromEmail: s.FromEmail,
		FromName:  s.FromName,
		Timeout:   s.Timeout,
	})
	if err != nil {
		log.Fatalf("smtp config: %v", err)
	}
	return m
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// создание avenant ждёт рассылку; она ограничена notify.timeout, см. Config.WriteTimeout
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      a.cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
