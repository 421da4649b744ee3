package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/api_gateway/handler"
	"github.com/personal-ledger/internal/api_gateway/middleware"
)

// handlers groups the route targets; command and archive are optional
type handlers struct {
	accounts     *handler.AccountHandler
	transactions *handler.TransactionHandler
	commands     *handler.CommandHandler
	archive      *handler.ArchiveHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", h.accounts.Create)
			accounts.GET("", h.accounts.List)
			accounts.GET("/:id", h.accounts.GetByID)

			accounts.POST("/:id/deposits", h.transactions.Deposit)
			accounts.POST("/:id/withdrawals", h.transactions.Withdraw)
			accounts.POST("/:id/fees", h.transactions.ChargeFee)
			accounts.POST("/:id/interest", h.transactions.AccrueInterest)

			accounts.POST("/:id/freeze", h.accounts.Freeze)
			accounts.POST("/:id/unfreeze", h.accounts.Unfreeze)
			accounts.POST("/:id/deactivate", h.accounts.Deactivate)
			accounts.PUT("/:id/daily-limit", h.accounts.SetDailyLimit)
			accounts.PUT("/:id/interest-rate", h.accounts.SetInterestRate)

			accounts.GET("/:id/balance", h.accounts.Balance)
			accounts.GET("/:id/summary", h.accounts.Summary)
			accounts.GET("/:id/transactions", h.accounts.History)
			accounts.GET("/:id/statement", h.accounts.Statement)
			accounts.GET("/:id/statistics", h.accounts.Statistics)
			accounts.GET("/:id/reconciliation", h.accounts.Reconcile)
		}

		v1.GET("/account-numbers/:number", h.accounts.GetByNumber)
		v1.POST("/transfers", h.transactions.Transfer)
		v1.POST("/bulk-transfers", h.transactions.BulkTransfer)

		if h.commands != nil {
			v1.POST("/commands", h.commands.Submit)
		}

		if h.archive != nil {
			archive := v1.Group("/archive")
			{
				archive.GET("/transactions/:id", h.archive.GetTransaction)
				archive.GET("/accounts/:id/transactions", h.archive.ListAccountTransactions)
			}
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
