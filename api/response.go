package api

// Response is the envelope of every JSON response. Code is 0 on success and
// the HTTP status otherwise.
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

func OK(data any) Response {
	return Response{Code: 0, Msg: "ok", Data: data}
}

func Fail(status int, msg string, data any) Response {
	return Response{Code: status, Msg: msg, Data: data}
}

type Page[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Items []T `json:"items"`
}

// SyncResult is the body of a sync response. ErrorKind is set only when the run failed.
type SyncResult struct {
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	ErrorKind string `json:"error_kind,omitempty"`
}

type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}
