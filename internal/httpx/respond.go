package httpx

import "github.com/gin-gonic/gin"

// Envelope is the JSON shape of every API response.
// swagger:model
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Envelope{Success: true, Data: data})
}

func OKMessage(c *gin.Context, code int, data interface{}, msg string) {
	c.JSON(code, Envelope{Success: true, Data: data, Message: msg})
}

func Fail(c *gin.Context, code int, msg string) {
	c.JSON(code, Envelope{Success: false, Message: msg})
}

// FailValidation reports per-field validation errors with a 400.
func FailValidation(c *gin.Context, errs map[string]string) {
	c.JSON(400, Envelope{Success: false, Message: "validation failed", Errors: errs})
}
