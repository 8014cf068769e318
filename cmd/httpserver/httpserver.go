// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/accounts-api/internal/accountdelivery"
	"github.com/go-petr/accounts-api/internal/accountrepo"
	"github.com/go-petr/accounts-api/internal/accountservice"
	"github.com/go-petr/accounts-api/internal/bankdelivery"
	"github.com/go-petr/accounts-api/internal/eventrepo"
	"github.com/go-petr/accounts-api/internal/middleware"
	"github.com/go-petr/accounts-api/pkg/bankpkg"
	"github.com/go-petr/accounts-api/pkg/configpkg"
	"github.com/go-petr/accounts-api/pkg/currencypkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
//
// A nil publisher keeps cashout events in the database only.
func New(
	conn *sql.DB, logger zerolog.Logger, config configpkg.Config, publisher accountservice.Publisher,
) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	eventRepo := eventrepo.NewRepoPGS(conn)

	banks, err := bankpkg.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("cannot load bank registry: %w", err)
	}

	accountService := accountservice.New(accountRepo, eventRepo, publisher)

	accountHandler := accountdelivery.NewHandler(accountService)
	bankHandler := bankdelivery.NewHandler(banks)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/accounts", accountHandler.List)
	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.PATCH("/accounts/:id", accountHandler.Update)
	engine.PUT("/accounts/:id", accountHandler.Update)
	engine.DELETE("/accounts/:id", accountHandler.Remove)
	engine.POST("/accounts/:id/cashouts", accountHandler.Cashout)

	engine.GET("/banks", bankHandler.List)
	engine.GET("/banks/:ispb", bankHandler.Get)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
