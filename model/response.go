package model

// Envelope is the JSON shape every endpoint responds with.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Count      *int64      `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type PageRef struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKMessage(data interface{}, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func OKList(data interface{}, count int64, pagination *Pagination) Envelope {
	return Envelope{Success: true, Data: data, Count: &count, Pagination: pagination}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}
