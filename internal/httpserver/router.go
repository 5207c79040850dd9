package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pizzashack/internal/domain"
	basketsvc "pizzashack/internal/service/basket"
	customersvc "pizzashack/internal/service/customer"
	"pizzashack/internal/store"
)

// Deps carries the services the router dispatches to.
type Deps struct {
	CustomerSvc customerService
	BasketSvc   basketService
	MenuSvc     menuService
}

type customerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Get(ctx context.Context, phone, tokenID string) (*domain.Customer, error)
	Update(ctx context.Context, phone, tokenID string, in customersvc.UpdateInput) (*domain.Customer, error)
	Delete(ctx context.Context, phone, tokenID string) error
	Login(ctx context.Context, phone, password string) (string, time.Time, error)
	Logout(ctx context.Context, tokenID string) error
	Extend(ctx context.Context, tokenID string) (time.Time, error)
}

type basketService interface {
	Create(ctx context.Context, phone, tokenID string) (*domain.Basket, error)
	Get(ctx context.Context, basketID, tokenID string) (*domain.Basket, error)
	Update(ctx context.Context, basketID string, items []domain.ItemInput, tokenID string) (*domain.Basket, error)
	DeleteChoice(ctx context.Context, basketID, itemID, choiceID, tokenID string) (int, error)
	Checkout(ctx context.Context, basketID, tokenID string) (*basketsvc.CheckoutResult, error)
}

type menuService interface {
	Menu() domain.Menu
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, st *store.Store, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(allowedOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
		router.Use(cors.New(cfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(st))

	router.POST("/customers", signupHandler(deps.CustomerSvc))
	router.GET("/customers/:phone", getCustomerHandler(deps.CustomerSvc))
	router.PUT("/customers/:phone", updateCustomerHandler(deps.CustomerSvc))
	router.DELETE("/customers/:phone", deleteCustomerHandler(deps.CustomerSvc))

	router.POST("/tokens", loginHandler(deps.CustomerSvc))
	router.PUT("/tokens/:id", extendTokenHandler(deps.CustomerSvc))
	router.DELETE("/tokens/:id", logoutHandler(deps.CustomerSvc))

	router.GET("/menu", menuHandler(deps.MenuSvc))

	router.POST("/baskets", createBasketHandler(deps.BasketSvc))
	router.GET("/baskets/:id", getBasketHandler(deps.BasketSvc))
	router.PUT("/baskets/:id", updateBasketHandler(deps.BasketSvc))
	router.DELETE("/baskets/:id/items/:itemID/choices/:choiceID", deleteChoiceHandler(deps.BasketSvc))
	router.POST("/baskets/:id/checkout", checkoutHandler(deps.BasketSvc))

	return router, nil
}
