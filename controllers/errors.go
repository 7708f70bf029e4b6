package controllers

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

func renderError(c *gin.Context, status int, trace string) {
	c.HTML(status, "error.tmpl", gin.H{"Trace": trace})
}

// Recover renders a panic and its stack on the page instead of a bare 500.
func Recover(c *gin.Context, recovered interface{}) {
	renderError(c, http.StatusInternalServerError, fmt.Sprintf("panic: %v\n%s", recovered, debug.Stack()))
	c.Abort()
}
