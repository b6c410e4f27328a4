package api

import (
	"context"
	"net/http"

	"github.com/dayoadeyemi/haven/api/background"
	"github.com/dayoadeyemi/haven/api/middleware"
	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/core/auth"
	"github.com/dayoadeyemi/haven/core/cart"
	"github.com/dayoadeyemi/haven/core/country"
	"github.com/dayoadeyemi/haven/core/enquiry"
	"github.com/dayoadeyemi/haven/core/payment"
	"github.com/dayoadeyemi/haven/core/property"
	"github.com/dayoadeyemi/haven/core/user"
	"github.com/dayoadeyemi/haven/paystack"
	"github.com/dayoadeyemi/haven/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin     string
	Log            logrus.FieldLogger
	DB             *sqlx.DB
	Tokens         *auth.Tokens
	Mailer         user.Mailer
	Background     *background.Background
	Paystack       *paystack.Client
	PaystackSecret string
	CallbackURL    string
	AuthLimiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Tokens)
	optional := auth.Optional(cfg.Tokens)
	admin := auth.Admin(cfg.Tokens)
	agent := auth.Agent(cfg.Tokens)
	buyer := auth.RenterBuyer(cfg.Tokens)
	rated := middleware.RateLimit(cfg.AuthLimiter)

	a.Handle(http.MethodPost, "/auth/register", user.HandleRegister(cfg.DB, cfg.Mailer), rated)
	a.Handle(http.MethodPost, "/auth/login", user.HandleLogin(cfg.DB, cfg.Tokens), rated)
	a.Handle(http.MethodPost, "/auth/refresh", user.HandleRefresh(cfg.Tokens), rated)
	a.Handle(http.MethodPost, "/auth/verify-email", user.HandleVerifyEmail(cfg.DB), rated)
	a.Handle(http.MethodPost, "/auth/resend-token", user.HandleResendToken(cfg.DB, cfg.Mailer, cfg.Background), rated)
	a.Handle(http.MethodPost, "/auth/forgot-password", user.HandleForgotPassword(cfg.DB, cfg.Mailer, cfg.Background), rated)
	a.Handle(http.MethodPost, "/auth/verify-reset-otp", user.HandleVerifyResetOTP(cfg.DB), rated)
	a.Handle(http.MethodPost, "/auth/reset-password", user.HandleResetPassword(cfg.DB), rated)
	a.Handle(http.MethodPost, "/auth/verify-old-password", user.HandleVerifyOldPassword(cfg.DB, cfg.Mailer, cfg.Background), authen, rated)
	a.Handle(http.MethodPost, "/auth/verify-otp", user.HandleVerifyOTP(cfg.DB), authen, rated)
	a.Handle(http.MethodPost, "/auth/change-password", user.HandleChangePassword(cfg.DB), authen)
	a.Handle(http.MethodPost, "/auth/set-passcode", user.HandleSetPasscode(cfg.DB), authen)

	a.Handle(http.MethodGet, "/users/profile", user.HandleShowProfile(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/profile", user.HandleUpdateProfile(cfg.DB), authen)

	a.Handle(http.MethodGet, "/countries", country.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/countries", country.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/countries/{id}", country.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/properties/mine", property.HandleListMine(cfg.DB), agent)
	a.Handle(http.MethodGet, "/properties/mine/{id}", property.HandleShowMine(cfg.DB), agent)
	a.Handle(http.MethodGet, "/properties", property.HandleList(cfg.DB), optional)
	a.Handle(http.MethodGet, "/properties/{id}", property.HandleShow(cfg.DB), optional)
	a.Handle(http.MethodPost, "/properties", property.HandleCreate(cfg.DB), agent)
	a.Handle(http.MethodPut, "/properties/{id}", property.HandleUpdate(cfg.DB), agent)
	a.Handle(http.MethodDelete, "/properties/{id}", property.HandleDelete(cfg.DB), agent)
	a.Handle(http.MethodPatch, "/admin/properties/{id}/restore", property.HandleRestore(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/admin/properties/{id}", property.HandleHardDelete(cfg.DB), admin)

	a.Handle(http.MethodPost, "/properties/{id}/enquiries", enquiry.HandleCreate(cfg.DB, cfg.Mailer, cfg.Background), buyer)
	a.Handle(http.MethodGet, "/enquiries/agent", enquiry.HandleListReceived(cfg.DB), agent)
	a.Handle(http.MethodGet, "/enquiries/mine", enquiry.HandleListMine(cfg.DB), buyer)
	a.Handle(http.MethodPost, "/enquiries/{id}/reply", enquiry.HandleReply(cfg.DB, cfg.Mailer, cfg.Background), agent)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), buyer)
	a.Handle(http.MethodPost, "/cart/add/{property_id}", cart.HandleAddItem(cfg.DB), buyer)
	a.Handle(http.MethodDelete, "/cart/remove/{property_id}", cart.HandleRemoveItem(cfg.DB), buyer)

	a.Handle(http.MethodPost, "/payments/initialize", payment.HandleInitialize(cfg.DB, cfg.Paystack, cfg.CallbackURL), buyer)
	a.Handle(http.MethodGet, "/payments/verify", payment.HandleVerify(cfg.DB, cfg.Paystack))
	a.Handle(http.MethodPost, "/payments/webhook", payment.HandleWebhook(cfg.DB, cfg.PaystackSecret))

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
