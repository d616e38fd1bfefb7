package task

type PageRetryTask struct {
	AreaCode   string `json:"area_code"`
	PageNumber int    `json:"page_number"` // Failed page number
	PageSize   int    `json:"page_size"`
	RetryCount int    `json:"retry_count"`
	Error      string `json:"error"` // Error message from the original failure
}

func (t *PageRetryTask) TaskType() string {
	return TypePageRetry
}

func (t *PageRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
