package middleware

import (
	"fmt"
	"time"

	"storeadmin/internal/logger"

	"github.com/gin-gonic/gin"
)

func Logger(logger *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		path := param.Path
		if param.Request.URL.RawQuery != "" {
			path = path + "?" + param.Request.URL.RawQuery
		}
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
		)
	})
}
