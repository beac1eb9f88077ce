package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xvierd/tec-office/internal/domain"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// writeResult sends successful results as 200. A failed result is a
// well-formed request the timers refused, so it goes out as 422 with the
// result attached.
func writeResult(c *gin.Context, result domain.Result) {
	if result.Success {
		c.JSON(http.StatusOK, gin.H{"result": result})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error": gin.H{
			"code":    "timer_rejected",
			"message": result.Message,
		},
		"result": result,
	})
}
