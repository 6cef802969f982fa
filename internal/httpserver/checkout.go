package httpserver

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
)

type checkoutService interface {
	PlaceOrder(ctx context.Context, buyerID string, in checkoutsvc.Input) (*checkoutsvc.Result, error)
}

type checkoutRequest struct {
	Nonce string            `json:"nonce"`
	Cart  []domain.CartLine `json:"cart"`
}

func checkoutHandler(svc checkoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "MalformedBody", "error": err.Error()})
			return
		}
		buyerID := c.GetString(buyerIDKey)

		result, err := svc.PlaceOrder(c.Request.Context(), buyerID, checkoutsvc.Input{Nonce: req.Nonce, Cart: req.Cart})
		if err != nil {
			logger.Printf("checkout handler: buyer_id=%s error=%v", buyerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "code": "Internal"})
			return
		}

		switch result.State {
		case checkoutsvc.StateSettled:
			c.JSON(http.StatusOK, gin.H{
				"ok":            true,
				"orderId":       result.OrderID,
				"transactionId": result.TransactionID,
			})
		case checkoutsvc.StateRejected:
			status := http.StatusBadRequest
			if result.Reason == checkoutsvc.ReasonInsufficientStock {
				status = http.StatusConflict
			}
			body := gin.H{"ok": false, "code": string(result.Reason)}
			if result.ProductID != "" {
				body["productId"] = result.ProductID
			}
			c.JSON(status, body)
		case checkoutsvc.StateDeclined:
			c.JSON(http.StatusPaymentRequired, gin.H{
				"ok":      false,
				"code":    "Declined",
				"message": result.GatewayMessage,
			})
		case checkoutsvc.StateOutOfStock:
			c.JSON(http.StatusConflict, gin.H{
				"ok":            false,
				"code":          "OutOfStock",
				"productId":     result.ProductID,
				"transactionId": result.TransactionID,
			})
		default: // RecordingFailed
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "code": "RecordingFailed"})
		}
	}
}
