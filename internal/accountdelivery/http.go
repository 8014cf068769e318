// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/accounts-api/internal/domain"
	"github.com/go-petr/accounts-api/pkg/errorspkg"
	"github.com/go-petr/accounts-api/pkg/web"
)

// ErrNonPositiveAmount indicates that a financial transaction amount is zero or negative.
var ErrNonPositiveAmount = errors.New("Amount must be greater than 0")

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Update(ctx context.Context, id int64, arg domain.UpdateAccountParams) (domain.Account, error)
	Remove(ctx context.Context, id int64) (domain.Account, error)
	Cashout(ctx context.Context, id int64, ft domain.FinancialTransaction) (domain.Event, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

type dataEvent struct {
	Event domain.Event `json:"event"`
}

type responseEvent struct {
	Data dataEvent `json:"data,omitempty"`
}

type addressRequest struct {
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	ZipCode    string `json:"zip_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (r *addressRequest) params() *domain.AddressParams {
	if r == nil {
		return nil
	}

	return &domain.AddressParams{
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		District:   r.District,
		City:       r.City,
		State:      r.State,
		ZipCode:    r.ZipCode,
		Country:    r.Country,
	}
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// badRequest logs the binding error and replies with the first validation message.
func badRequest(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	var ve validator.ValidationErrors
	errors.As(err, &ve)

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
}

// serviceError maps service layer errors to http responses.
func serviceError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrDocumentAlreadyExists):
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type listRequest struct {
	Limit  int32 `form:"limit" binding:"min=0,max=1000"`
	Offset int32 `form:"offset" binding:"min=0"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	accounts, err := h.service.List(ctx, req.Limit, req.Offset)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := responseAccounts{
		Data: dataAccounts{accounts},
	}

	gctx.JSON(http.StatusOK, res)
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	acc, err := h.service.Get(ctx, req.ID)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := response{
		Data: data{acc},
	}

	gctx.JSON(http.StatusOK, res)
}

type createRequest struct {
	Name        string          `json:"name" binding:"required"`
	Document    string          `json:"document" binding:"required,numeric"`
	Email       string          `json:"email" binding:"required,email"`
	Companies   []string        `json:"companies" binding:"dive,required"`
	SubAccounts []string        `json:"sub_accounts"`
	Address     *addressRequest `json:"address"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	arg := domain.CreateAccountParams{
		Name:        req.Name,
		Document:    req.Document,
		Email:       req.Email,
		Companies:   req.Companies,
		SubAccounts: req.SubAccounts,
		Address:     req.Address.params(),
	}

	createdAccount, err := h.service.Create(ctx, arg)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := response{
		Data: data{createdAccount},
	}

	gctx.JSON(http.StatusCreated, res)
}

type updateRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=1"`
	Document    *string         `json:"document" binding:"omitempty,numeric"`
	Email       *string         `json:"email" binding:"omitempty,email"`
	Companies   []string        `json:"companies" binding:"omitempty,dive,required"`
	SubAccounts []string        `json:"sub_accounts"`
	Address     *addressRequest `json:"address"`
}

// Update handles http request to update account. PUT and PATCH share it.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	arg := domain.UpdateAccountParams{
		Name:        req.Name,
		Document:    req.Document,
		Email:       req.Email,
		Companies:   req.Companies,
		SubAccounts: req.SubAccounts,
		Address:     req.Address.params(),
	}

	updatedAccount, err := h.service.Update(ctx, uri.ID, arg)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := response{
		Data: data{updatedAccount},
	}

	gctx.JSON(http.StatusOK, res)
}

// Remove handles http request to delete account.
func (h *Handler) Remove(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	removedAccount, err := h.service.Remove(ctx, req.ID)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := response{
		Data: data{removedAccount},
	}

	gctx.JSON(http.StatusOK, res)
}

type cashoutRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,currency"`
	Description string          `json:"description" binding:"max=255"`
}

// Cashout handles http request to record a cashout paid by the account.
func (h *Handler) Cashout(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req cashoutRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	if !req.Amount.IsPositive() {
		l.Info().Str("amount", req.Amount.String()).Msg("non positive amount")
		gctx.JSON(http.StatusBadRequest, web.Error(ErrNonPositiveAmount))

		return
	}

	ft := domain.FinancialTransaction{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	}

	event, err := h.service.Cashout(ctx, uri.ID, ft)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := responseEvent{
		Data: dataEvent{event},
	}

	gctx.JSON(http.StatusCreated, res)
}
