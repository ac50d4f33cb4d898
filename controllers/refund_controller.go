package controllers

import (
	"fmt"
	"time"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/services"
	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// RefundRequest represents the request body for an admin refund
type RefundRequest struct {
	PaymentID uint            `json:"payment_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason" binding:"max=500"`
}

// RefundController serves the admin refund endpoints
type RefundController struct {
	refunds *services.RefundService
}

func NewRefundController(refunds *services.RefundService) *RefundController {
	return &RefundController{refunds: refunds}
}

// InitiateRefund records a refund and asks the provider to execute it
func (rc *RefundController) InitiateRefund(c *gin.Context) {
	utils.LogInfo("InitiateRefund called")

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid refund request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	refund, err := rc.refunds.InitiateRefund(c.Request.Context(), services.RefundInput{
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondRefund(c, refund)
}

// RetryRefund pushes a PENDING refund to the provider again
func (rc *RefundController) RetryRefund(c *gin.Context) {
	refundID, ok := idParam(c, "id")
	if !ok {
		return
	}

	refund, err := rc.refunds.Retry(c.Request.Context(), refundID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondRefund(c, refund)
}

func respondRefund(c *gin.Context, refund *models.Refund) {
	if refund.Status == models.RefundStatusPending {
		utils.Accepted(c, utils.MsgRefundPending, gin.H{"refund": refund})
		return
	}
	utils.Created(c, utils.MsgRefundInitiated, gin.H{"refund": refund})
}

// ListPendingRefunds returns refunds still waiting on the provider
func (rc *RefundController) ListPendingRefunds(c *gin.Context) {
	pagination := utils.NewPagination(c)
	refunds, total, err := rc.refunds.ListPending(c.Request.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	pagination.SetTotal(total)
	utils.SendPaginatedResponse(c, "Pending refunds retrieved successfully", refunds, pagination)
}

// ExportPendingRefunds downloads every pending refund as an Excel sheet
func (rc *RefundController) ExportPendingRefunds(c *gin.Context) {
	utils.LogInfo("ExportPendingRefunds called")

	refunds, _, err := rc.refunds.ListPending(c.Request.Context(), 0, 0)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Pending Refunds")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString(fmt.Sprintf("%s - Pending Refunds", utils.AppName))
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Generated: " + time.Now().Format("2006-01-02 15:04"))
	sheet.AddRow()

	headers := []string{"Refund ID", "Payment ID", "Booking ID", "Amount", "Reason", "Last Error", "Requested At"}
	headerRow := sheet.AddRow()
	bold := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	bold.Font = *font
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		cell.SetStyle(bold)
	}

	outstanding := decimal.Zero
	for _, refund := range refunds {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(refund.ID))
		row.AddCell().SetInt(int(refund.PaymentID))
		row.AddCell().SetInt(int(refund.BookingID))
		row.AddCell().SetString(utils.FormatAmount(refund.Amount))
		row.AddCell().SetString(refund.Reason)
		row.AddCell().SetString(refund.LastError)
		row.AddCell().SetString(refund.CreatedAt.Format("2006-01-02 15:04"))
		outstanding = outstanding.Add(refund.Amount)
	}

	sheet.AddRow()
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Total Outstanding")
	summaryRow.AddCell().SetString(utils.FormatAmount(outstanding))
	summaryRow.Cells[0].SetStyle(bold)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pending_refunds_%s.xlsx", time.Now().Format("20060102")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", nil)
		return
	}
	utils.LogInfo("Exported %d pending refunds", len(refunds))
}
