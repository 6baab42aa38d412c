package app

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/phenrril/sheetstore/internal/adapters/cache"
	"github.com/phenrril/sheetstore/internal/adapters/httpserver"
	"github.com/phenrril/sheetstore/internal/adapters/notify"
	"github.com/phenrril/sheetstore/internal/adapters/repo/memory"
	pgrepo "github.com/phenrril/sheetstore/internal/adapters/repo/postgres"
	"github.com/phenrril/sheetstore/internal/adapters/sheet"
	"github.com/phenrril/sheetstore/internal/adapters/webhook"
	"github.com/phenrril/sheetstore/internal/config"
	"github.com/phenrril/sheetstore/internal/domain"
	"github.com/phenrril/sheetstore/internal/theme"
	"github.com/phenrril/sheetstore/internal/usecase"
	"github.com/phenrril/sheetstore/internal/views"
)

// sessionPurger lo cumplen los dos repos de sesiones.
type sessionPurger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type App struct {
	Config    config.Config
	Tmpl      *template.Template
	Theme     theme.Theme
	CatalogUC *usecase.CatalogUC
	OrderUC   *usecase.OrderUC
	AdminUC   *usecase.AdminUC
	Sessions  domain.SessionStore

	purger  sessionPurger
	closers []func()
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	th, err := theme.Load(cfg.Theme)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Theme: th}

	app.CatalogUC = &usecase.CatalogUC{
		Source: sheet.NewLoader(cfg.CatalogURL, cfg.HTTPTimeout),
		Cache:  app.catalogCache(ctx),
		TTL:    cfg.CatalogCacheTTL,
	}

	var sink domain.OrderSink
	if cfg.OAuthTokenURL != "" {
		sink = webhook.NewOAuthSubmitter(ctx, cfg.OrderWebhookURL, cfg.HTTPTimeout, &clientcredentials.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
			Scopes:       cfg.OAuthScopes,
		})
	} else {
		sink = webhook.NewSubmitter(cfg.OrderWebhookURL, cfg.HTTPTimeout)
	}

	var notifier domain.OrderNotifier
	if cfg.AMQPURL != "" {
		pub, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("amqp no disponible, sigo sin notificaciones")
		} else {
			notifier = pub
			app.closers = append(app.closers, pub.Close)
		}
	}
	app.OrderUC = usecase.NewOrderUC(sink, notifier, th.Sizes)

	var orderLog domain.TableSource
	if cfg.OrderLogURL != "" {
		orderLog = sheet.NewLoader(cfg.OrderLogURL, cfg.HTTPTimeout)
	}
	if !cfg.IsDev() && cfg.InsecureSessionKey() {
		log.Warn().Str("env", cfg.AppEnv).Msg("SESSION_KEY sin configurar: las cookies se firman con la clave de desarrollo")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD vacío: el panel de admin queda abierto")
	}
	app.AdminUC = usecase.NewAdminUC(cfg.AdminPassword, orderLog)

	if err := app.openSessions(cfg); err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		app.Tmpl, err = template.New("layout").Funcs(views.Funcs()).ParseGlob("internal/views/*.html")
		if err != nil {
			log.Warn().Err(err).Msg("plantillas de disco no disponibles, uso las embebidas")
			app.Tmpl, err = views.Parse()
		}
	} else {
		app.Tmpl, err = views.Parse()
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// catalogCache devuelve nil si no hay TTL; redis si responde, memoria si no.
func (a *App) catalogCache(ctx context.Context) domain.CatalogCache {
	cfg := a.Config
	if cfg.CatalogCacheTTL <= 0 {
		return nil
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis no responde, cache en memoria")
		_ = rdb.Close()
		return cache.NewMemory()
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	return cache.NewRedis(rdb, cache.DefaultKey)
}

func (a *App) openSessions(cfg config.Config) error {
	if cfg.DBDSN == "" {
		repo := memory.NewSessionRepo(cfg.SessionIdle)
		a.Sessions, a.purger = repo, repo
		return nil
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		return err
	}
	repo := pgrepo.NewSessionRepo(db, cfg.SessionIdle)
	if err := repo.Migrate(); err != nil {
		return err
	}
	a.Sessions, a.purger = repo, repo
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}
	return nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Tmpl, a.Theme, a.CatalogUC, a.OrderUC, a.AdminUC, a.Sessions, a.Config.SessionKey)
}

// RunSessionJanitor borra sesiones inactivas cada every hasta que ctx termine.
// Con SESSION_IDLE=0 las sesiones no vencen y no hay nada que purgar.
func (a *App) RunSessionJanitor(ctx context.Context, every time.Duration) {
	if a.Config.SessionIdle <= 0 {
		log.Debug().Msg("SESSION_IDLE=0: janitor de sesiones desactivado")
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.purger.Purge(ctx, time.Now().Add(-a.Config.SessionIdle))
			if err != nil {
				log.Error().Err(err).Msg("purgar sesiones")
				continue
			}
			if n > 0 {
				log.Debug().Int64("sessions", n).Msg("sesiones purgadas")
			}
		}
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
