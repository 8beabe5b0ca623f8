package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	// Identity
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	// Guest carts
	GuestCartTTLAmount int    `envconfig:"CART_GUEST_TTL_AMOUNT" default:"30"`
	GuestCartTTLUnit   string `envconfig:"CART_GUEST_TTL_UNIT" default:"minute"`
	// Headout partner API
	HeadoutBaseURL string        `envconfig:"HEADOUT_BASE_URL" default:"https://api.test-headout.com/api/public/v1"`
	HeadoutAPIKey  string        `envconfig:"HEADOUT_API_KEY"`
	HeadoutTimeout time.Duration `envconfig:"HEADOUT_TIMEOUT" default:"15s"`
	// Omise
	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey string `envconfig:"OMISE_SECRET_KEY"`
	Currency       string `envconfig:"CHECKOUT_CURRENCY" default:"usd"`
	// Redis cart cache (optional, empty disables)
	RedisAddr string `envconfig:"REDIS_ADDR"`
	// RabbitMQ ticket mail (optional, empty disables)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"tripcart.events"`
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

// GuestCartTTL resolves the configured amount+unit into a duration.
func (c App) GuestCartTTL() (time.Duration, error) {
	switch c.GuestCartTTLUnit {
	case "second":
		return time.Duration(c.GuestCartTTLAmount) * time.Second, nil
	case "minute":
		return time.Duration(c.GuestCartTTLAmount) * time.Minute, nil
	case "hour":
		return time.Duration(c.GuestCartTTLAmount) * time.Hour, nil
	case "day":
		return time.Duration(c.GuestCartTTLAmount) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown guest cart TTL unit %q", c.GuestCartTTLUnit)
	}
}
