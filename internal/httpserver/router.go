package httpserver

import (
	"context"
	"errors"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/logging"
	accountsvc "vatshop/internal/service/account"
	cartsvc "vatshop/internal/service/cart"
	paymentsvc "vatshop/internal/service/payment"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Related(ctx context.Context, id string) ([]domain.Product, error)
}

type cartService interface {
	Resolve(ctx context.Context, sess *domain.Session, accountID *string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, c *domain.Cart, productID string, quantity int, replace bool) (*domain.Billing, error)
	Billing(c *domain.Cart) domain.Billing
	ItemCount(c *domain.Cart) int
	UpdateCheckout(ctx context.Context, c *domain.Cart, in cartsvc.CheckoutInput) (*domain.Cart, error)
}

type invoiceService interface {
	GetForAccount(ctx context.Context, number, accountID string) (*domain.Invoice, error)
	ListForAccount(ctx context.Context, accountID string) ([]domain.Invoice, error)
	Billing(inv *domain.Invoice) domain.Billing
}

type paymentService interface {
	PrepareIntent(ctx context.Context, c *domain.Cart) (*paymentsvc.Intent, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type accountService interface {
	Signup(ctx context.Context, in accountsvc.SignupInput) (*domain.Account, string, error)
	Login(ctx context.Context, email, password string) (*domain.Account, string, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id string, in accountsvc.ProfileInput) (*domain.Account, error)
	AccessTTLSeconds() int
}

type sessionService interface {
	Load(ctx context.Context, token string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	TTL() time.Duration
}

// Deps carries the services the router dispatches to.
type Deps struct {
	Store      pinger
	ProductSvc productService
	CartSvc    cartService
	InvoiceSvc invoiceService
	PaymentSvc paymentService
	AccountSvc accountService
	SessionSvc sessionService
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// SecureCookies marks the session cookie Secure. Only development runs
	// over plain HTTP should leave it off.
	SecureCookies bool
}

func (d Deps) validate() error {
	switch {
	case d.ProductSvc == nil:
		return errors.New("product service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.InvoiceSvc == nil:
		return errors.New("invoice service is required")
	case d.PaymentSvc == nil:
		return errors.New("payment service is required")
	case d.AccountSvc == nil:
		return errors.New("account service is required")
	case d.SessionSvc == nil:
		return errors.New("session service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	router := gin.New()
	router.Use(logging.GinMiddleware(logger.Named("http")), gin.Recovery())
	if len(opts.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = opts.AllowedOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AddAllowHeaders("Authorization", sessionHeader)
		corsCfg.AddExposeHeaders(sessionHeader)
		router.Use(cors.New(corsCfg))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	router.POST("/auth/register", h.register)
	router.POST("/auth/token", h.token)

	me := router.Group("/me", authMiddleware(deps.AccountSvc, true))
	me.GET("", h.getMe)
	me.PATCH("", h.updateMe)

	shop := router.Group("", sessionMiddleware(deps.SessionSvc, logger, opts.SecureCookies), authMiddleware(deps.AccountSvc, false))
	shop.GET("/cart", h.getCart)
	shop.POST("/cart/items", h.setCartItem)
	shop.PUT("/cart/checkout", h.updateCheckout)
	shop.POST("/payment/intent", h.createPaymentIntent)

	router.POST("/payment/webhook", h.paymentWebhook)

	invoices := router.Group("/invoices", authMiddleware(deps.AccountSvc, true))
	invoices.GET("", h.listInvoices)
	invoices.GET("/:number", h.getInvoice)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
