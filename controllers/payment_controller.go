package controllers

import (
	"github.com/Govind-619/TripSphere/services"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request body for opening a provider order
type CreateOrderRequest struct {
	BookingID      uint                `json:"booking_id" binding:"required"`
	Amount         decimal.NullDecimal `json:"amount"`
	Currency       string              `json:"currency" binding:"omitempty,len=3"`
	IdempotencyKey string              `json:"idempotency_key" binding:"max=128"`
}

// PaymentController serves payment orders and the provider webhook
type PaymentController struct {
	payments *services.PaymentService
	webhooks *services.WebhookService
}

func NewPaymentController(payments *services.PaymentService, webhooks *services.WebhookService) *PaymentController {
	return &PaymentController{payments: payments, webhooks: webhooks}
}

// CreateOrder opens a provider order for a booking awaiting payment
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	utils.LogInfo("CreatePaymentOrder called")

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment order request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	key := req.IdempotencyKey
	if header := c.GetHeader(utils.IdempotencyKeyHeader); header != "" {
		key = header
	}

	input := services.CreateOrderInput{
		BookingID:      req.BookingID,
		Currency:       req.Currency,
		IdempotencyKey: key,
	}
	if req.Amount.Valid {
		input.Amount = &req.Amount.Decimal
	}

	order, err := pc.payments.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if order.Replayed {
		utils.Success(c, utils.MsgOrderCreated, gin.H{"order": order})
		return
	}
	utils.Created(c, utils.MsgOrderCreated, gin.H{"order": order})
}

// GetPayment returns a payment owned by the caller
func (pc *PaymentController) GetPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	paymentID, ok := idParam(c, "id")
	if !ok {
		return
	}

	isAdmin := c.GetString(utils.ContextRoleKey) == utils.RoleAdmin
	payment, err := pc.payments.Get(c.Request.Context(), paymentID, userID, isAdmin)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Payment retrieved successfully", gin.H{"payment": payment})
}

// Webhook receives provider callbacks. The signature covers the raw body, so
// it is read before any JSON decoding.
func (pc *PaymentController) Webhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Invalid request body", nil)
		return
	}

	eventID := c.GetHeader(utils.RazorpayEventIDHeader)
	signature := c.GetHeader(utils.RazorpaySignatureHeader)
	utils.LogInfo("Webhook delivery %q received (%d bytes)", eventID, len(rawBody))

	outcome, err := pc.webhooks.Process(c.Request.Context(), rawBody, signature, eventID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Webhook processed", gin.H{"outcome": outcome})
}
