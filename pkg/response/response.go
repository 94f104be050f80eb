package response

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope.
type Body struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Code     string      `json:"code,omitempty"`
	Redirect *Redirect   `json:"redirect,omitempty"`
}

// Redirect tells the browser where to navigate after a denial.
type Redirect struct {
	To        string `json:"to"`
	Reason    string `json:"reason,omitempty"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

// URL renders the redirect as a location with reason and returnUrl query parameters.
func (r Redirect) URL() string {
	q := url.Values{}
	if r.ReturnURL != "" {
		q.Set("returnUrl", r.ReturnURL)
	}
	if r.Reason != "" {
		q.Set("error", r.Reason)
	}
	if len(q) == 0 {
		return r.To
	}
	return r.To + "?" + q.Encode()
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail sends an error response with the given status, message and machine code.
func Fail(c *gin.Context, status int, err, code string) {
	c.JSON(status, Body{Success: false, Error: err, Code: code})
}

// Deny sends an error response carrying a redirect intent and aborts the chain.
func Deny(c *gin.Context, status int, err, code string, redirect Redirect) {
	c.AbortWithStatusJSON(status, Body{Success: false, Error: err, Code: code, Redirect: &redirect})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err, Code: "invalid_request"})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err, Code: "not_found"})
}
