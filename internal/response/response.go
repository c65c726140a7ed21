package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the JSON envelope shared by every QuizGen endpoint.
type Response struct {
	Data       interface{} `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody carries the error code, its user-facing message and any
// per-field validation messages.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes a page of attempt history.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data under the envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Data: data, Metadata: metadataFor(c)})
}

// SuccessWithPagination writes one page of a list.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *Pagination) {
	c.JSON(statusCode, Response{Data: data, Pagination: pagination, Metadata: metadataFor(c)})
}

// Fail writes code with its default message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, failure(c, code, "", nil))
}

// FailWithFields writes a validation failure with per-field messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, failure(c, code, "", fields))
}

// FailWithMessage overrides the default text of code, e.g. with a message
// relayed from the quiz generator.
func FailWithMessage(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.JSON(statusCode, failure(c, code, message, nil))
}

// AbortFail stops the middleware chain with an error envelope.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, failure(c, code, "", nil))
}

func failure(c *gin.Context, code ErrCode, message string, fields map[string]string) Response {
	if message == "" {
		message = GetMessage(code)
	}
	return Response{
		Error:    &ErrorBody{Code: code, Message: message, Fields: fields},
		Metadata: metadataFor(c),
	}
}

func metadataFor(c *gin.Context) Metadata {
	id := c.GetString(ContextKeyRequestID)
	if id == "" {
		// request id middleware not mounted
		id = uuid.NewString()
	}
	return Metadata{RequestID: id, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}
