package http

// GraphQLRequest is the body of a GraphQL operation, sent as JSON, as the
// "operations" field of a multipart request, or as a websocket payload.
type GraphQLRequest struct {
	Query         string                 `json:"query" form:"query" binding:"required"`
	OperationName string                 `json:"operationName" form:"operationName"`
	Variables     map[string]interface{} `json:"variables" form:"-"`
}

type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func errorBody(msg string) ErrorResponse {
	return ErrorResponse{Errors: []ErrorMessage{{Message: msg}}}
}
