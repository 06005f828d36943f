package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ganzorig/qpaygate/internal/server/http/middleware"
)

// CurrentMerchantID extracts authenticated merchant identifier from context.
func CurrentMerchantID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.MerchantIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}
