package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv string
	Port   string

	CatalogURL      string
	OrderWebhookURL string
	OrderLogURL     string
	AdminPassword   string
	Theme           string

	HTTPTimeout     time.Duration
	CatalogCacheTTL time.Duration

	SessionKey  string
	SessionIdle time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DSN de postgres para sesiones; vacío = sesiones en memoria.
	DBDSN string

	AMQPURL      string
	AMQPExchange string

	OAuthTokenURL     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthScopes       []string

	LogLevel  string
	LogFormat string
}

// DevSessionKey firma las cookies cuando no hay SESSION_KEY; sólo sirve en desarrollo.
const DevSessionKey = "dev-insecure"

func (c Config) InsecureSessionKey() bool { return c.SessionKey == DevSessionKey }

func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "development" || c.AppEnv == "dev"
}

// Load lee el entorno una sola vez al arrancar.
func Load() (Config, error) {
	c := Config{
		AppEnv:          strings.ToLower(os.Getenv("APP_ENV")),
		Port:            os.Getenv("PORT"),
		CatalogURL:      strings.TrimSpace(os.Getenv("CATALOG_URL")),
		OrderWebhookURL: strings.TrimSpace(os.Getenv("ORDER_WEBHOOK_URL")),
		OrderLogURL:     strings.TrimSpace(os.Getenv("ORDER_LOG_URL")),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		Theme:           strings.ToLower(strings.TrimSpace(os.Getenv("THEME"))),
		SessionKey:      os.Getenv("SESSION_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    os.Getenv("AMQP_EXCHANGE"),

		OAuthTokenURL:     os.Getenv("ORDER_OAUTH_TOKEN_URL"),
		OAuthClientID:     os.Getenv("ORDER_OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("ORDER_OAUTH_CLIENT_SECRET"),

		LogLevel:  strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogFormat: strings.ToLower(os.Getenv("LOG_FORMAT")),
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Theme == "" {
		c.Theme = "shark"
	}
	if c.SessionKey == "" {
		c.SessionKey = DevSessionKey
	}
	if c.AMQPExchange == "" {
		c.AMQPExchange = "sheetstore.orders"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if raw := os.Getenv("ORDER_OAUTH_SCOPES"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.OAuthScopes = append(c.OAuthScopes, s)
			}
		}
	}

	var err error
	if c.HTTPTimeout, err = durationEnv("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return c, err
	}
	if c.CatalogCacheTTL, err = durationEnv("CATALOG_CACHE_TTL", 0); err != nil {
		return c, err
	}
	if c.SessionIdle, err = durationEnv("SESSION_IDLE", 12*time.Hour); err != nil {
		return c, err
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if c.RedisDB, err = strconv.Atoi(raw); err != nil {
			return c, errors.New("REDIS_DB inválido")
		}
	}
	c.DBDSN = postgresDSN()

	if c.CatalogURL == "" {
		return c, errors.New("CATALOG_URL faltante")
	}
	if c.OrderWebhookURL == "" {
		return c, errors.New("ORDER_WEBHOOK_URL faltante")
	}
	if c.HTTPTimeout <= 0 {
		return c, errors.New("HTTP_TIMEOUT debe ser positivo")
	}
	return c, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New(key + " inválido: " + err.Error())
	}
	return d, nil
}

// postgresDSN arma el DSN desde DB_DSN o desde las variables sueltas. Si no
// hay nada configurado devuelve vacío.
func postgresDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	pass := os.Getenv("DB_PASSWORD")
	if pass == "" {
		pass = "postgres"
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "sheetstore"
	}
	ssl := os.Getenv("DB_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}
