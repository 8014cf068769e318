// Package bankdelivery serves the read-only bank table over http.
package bankdelivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/accounts-api/pkg/bankpkg"
	"github.com/go-petr/accounts-api/pkg/web"
)

// ErrBankNotFound indicates that no bank has the requested ISPB code.
var ErrBankNotFound = errors.New("bank not found")

// Registry provides the bank lookups needed by bank delivery layer.
type Registry interface {
	Lookup(ispb string) (bankpkg.Bank, bool)
	All() []bankpkg.Bank
}

// Handler facilitates bank delivery layer logic.
type Handler struct {
	registry Registry
}

// NewHandler returns bank handler.
func NewHandler(r Registry) Handler {
	return Handler{registry: r}
}

type data struct {
	Bank bankpkg.Bank `json:"bank"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type dataBanks struct {
	Banks []bankpkg.Bank `json:"banks"`
}

type responseBanks struct {
	Data dataBanks `json:"data,omitempty"`
}

type getRequest struct {
	ISPB string `uri:"ispb" binding:"required,len=8,numeric"`
}

// Get handles http request to look a bank up by ISPB code.
func (h *Handler) Get(gctx *gin.Context) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		var ve validator.ValidationErrors
		errors.As(err, &ve)

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

		return
	}

	bank, ok := h.registry.Lookup(req.ISPB)
	if !ok {
		gctx.JSON(http.StatusNotFound, web.Error(ErrBankNotFound))
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{bank}})
}

// List handles http request to list all known banks.
func (h *Handler) List(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, responseBanks{Data: dataBanks{h.registry.All()}})
}
