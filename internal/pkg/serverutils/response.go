package serverutils

// Response is the standard success envelope for all API endpoints.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody is the standard error envelope. ErrorType lets clients
// distinguish failure classes without parsing the message.
type ErrorResponseBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, errorType string) ErrorResponseBody {
	return ErrorResponseBody{
		Success:   false,
		Message:   message,
		ErrorType: errorType,
	}
}
