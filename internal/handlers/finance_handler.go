package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/finance"
)

type FinanceHandler struct {
	currency string
}

func NewFinanceHandler(currency string) *FinanceHandler {
	return &FinanceHandler{currency: currency}
}

// BreakEven runs the break-even calculator
func (h *FinanceHandler) BreakEven(c *gin.Context) {
	var in finance.Inputs
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	currency := c.DefaultQuery("currency", h.currency)
	res := finance.Calculate(in)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res,
		"display": res.Display(currency),
	})
}
