package utils

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// RespondFailure maps a service error onto the response envelope. Internal
// errors are logged with their cause but answer with a generic message.
func RespondFailure(c *gin.Context, err error) {
	f := AsFailure(err)
	if f.Code == http.StatusInternalServerError {
		if cause := f.Unwrap(); cause != nil {
			log.Printf("❌ internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, cause)
		} else {
			log.Printf("❌ internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		JSONError(c, f.Code, "internal error")
		return
	}

	body := gin.H{"success": false, "error": f.Message}
	if len(f.Fields) > 0 {
		body["fields"] = f.Fields
	}
	if f.Conflict != nil {
		body["conflict"] = f.Conflict
	}
	c.JSON(f.Code, body)
}
