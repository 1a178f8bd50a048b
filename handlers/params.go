package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// intQuery reads an integer query parameter, falling back to def when
// absent or malformed
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
