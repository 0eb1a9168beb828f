package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OptionsGet handles the OPTIONS method for endpoints supporting GET.
func OptionsGet(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET")
	c.Status(http.StatusNoContent)
}

// OptionsPost handles the OPTIONS method for endpoints supporting POST.
func OptionsPost(c *gin.Context) {
	c.Header("allow", "OPTIONS, POST")
	c.Status(http.StatusNoContent)
}

// OptionsGetPost handles the OPTIONS method for endpoints supporting GET and POST.
func OptionsGetPost(c *gin.Context) {
	c.Header("allow", "OPTIONS, GET, POST")
	c.Status(http.StatusNoContent)
}
