package config

import "time"

type Config struct {
	Web      Web
	DB       DB
	Email    Email
	Paystack Paystack
	Cors     Cors
	Auth     Auth
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:haven"`
	DisableTLS bool   `conf:"default:true"`
}

type Email struct {
	Host     string `conf:"default:localhost"`
	Port     int    `conf:"default:25"`
	Address  string `conf:"default:no-reply@haven.example"`
	Password string `conf:"mask"`
}

type Paystack struct {
	SecretKey   string        `conf:"mask"`
	URL         string        `conf:"default:https://api.paystack.co"`
	CallbackURL string        `conf:"default:http://localhost:3000/payment/callback"`
	Timeout     time.Duration `conf:"default:10s"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	// TokenSecret signs the HS256 access and refresh tokens.
	TokenSecret     string        `conf:"mask"`
	AccessDuration  time.Duration `conf:"default:15m"`
	RefreshDuration time.Duration `conf:"default:168h"`
}
