package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"alipaygw/internal/crypto"
	"alipaygw/internal/provider/base"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultGatewayURL = "https://mapi.alipay.com/gateway.do"

type AppCfg struct {
	Env, Port, BaseURL, CallbackBaseURL string
	CompanyID                           string
	LogLevel                            string
	CallbackRPS                         int // per-second budget for /callback and /return; 0 disables
}
type DBCfg struct{ DSN string }
type RedisCfg struct {
	Addr     string
	Password string
	DB       int
}

type SecurityCfg struct {
	AESKey     []byte
	AdminToken string // guards the /api/v1 routes
}

// AlipayCfg holds the gateway credentials. Key is always the plaintext signing
// key; when it is supplied as ALIPAY_KEY_ENC it is decrypted with the AES key.
type AlipayCfg struct {
	PartnerID   string
	SellerEmail string
	Key         string
	GatewayURL  string
}

type Cfg struct {
	App    AppCfg
	DB     DBCfg
	Redis  RedisCfg
	Sec    SecurityCfg
	Alipay AlipayCfg
}

// Validate checks the credentials the way the settings form would.
func (a AlipayCfg) Validate() error {
	if err := base.ValidateSecret(a.Key); err != nil {
		return err
	}
	if err := base.ValidateEmail(a.SellerEmail); err != nil {
		return err
	}
	return base.ValidatePartnerID(a.PartnerID)
}

// Load reads .env and the process environment; it exits on invalid settings.
func Load() Cfg {
	_ = godotenv.Load() // a missing .env is fine

	cfg, err := load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

func load() (Cfg, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "sandbox")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("COMPANY_ID", "1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CALLBACK_RPS", 50)
	v.SetDefault("TZ", "Asia/Shanghai")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALIPAY_GATEWAY_URL", DefaultGatewayURL)

	if tz := v.GetString("TZ"); tz != "" {
		os.Setenv("TZ", tz)
	}

	cfg := Cfg{
		App: AppCfg{
			Env:             v.GetString("APP_ENV"),
			Port:            v.GetString("APP_PORT"),
			BaseURL:         strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
			CallbackBaseURL: strings.TrimRight(v.GetString("CALLBACK_BASE_URL"), "/"),
			CompanyID:       v.GetString("COMPANY_ID"),
			LogLevel:        v.GetString("LOG_LEVEL"),
			CallbackRPS:     v.GetInt("CALLBACK_RPS"),
		},
		DB: DBCfg{DSN: v.GetString("DB_DSN")},
		Redis: RedisCfg{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Sec: SecurityCfg{
			AdminToken: strings.TrimSpace(v.GetString("ADMIN_TOKEN")),
		},
		Alipay: AlipayCfg{
			PartnerID:   strings.TrimSpace(v.GetString("ALIPAY_PARTNER_ID")),
			SellerEmail: strings.TrimSpace(v.GetString("ALIPAY_SELLER_EMAIL")),
			Key:         v.GetString("ALIPAY_KEY"),
			GatewayURL:  v.GetString("ALIPAY_GATEWAY_URL"),
		},
	}

	if keyB64 := v.GetString("AES_256_KEY_BASE64"); keyB64 != "" {
		key, err := parseAESKey(keyB64)
		if err != nil {
			return Cfg{}, err
		}
		cfg.Sec.AESKey = key
	}

	if enc := v.GetString("ALIPAY_KEY_ENC"); enc != "" {
		if cfg.Sec.AESKey == nil {
			return Cfg{}, fmt.Errorf("ALIPAY_KEY_ENC requires AES_256_KEY_BASE64")
		}
		key, err := crypto.DecryptString(cfg.Sec.AESKey, enc)
		if err != nil {
			return Cfg{}, fmt.Errorf("decrypt ALIPAY_KEY_ENC: %w", err)
		}
		cfg.Alipay.Key = key
	}

	if cfg.DB.DSN == "" {
		return Cfg{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.App.CallbackBaseURL == "" {
		return Cfg{}, fmt.Errorf("CALLBACK_BASE_URL is required")
	}
	if err := cfg.Alipay.Validate(); err != nil {
		return Cfg{}, fmt.Errorf("alipay credentials: %w", err)
	}

	return cfg, nil
}

// LoadAESKey reads only AES_256_KEY_BASE64, for tools that need no other settings.
func LoadAESKey() ([]byte, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	keyB64 := v.GetString("AES_256_KEY_BASE64")
	if keyB64 == "" {
		return nil, fmt.Errorf("AES_256_KEY_BASE64 is required")
	}
	return parseAESKey(keyB64)
}

func parseAESKey(keyB64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("AES_256_KEY_BASE64 must be a valid 32-byte base64 key")
	}
	return key, nil
}
