package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type StatsResponse struct {
	EmailsTriaged     int64 `json:"emailsTriaged"`
	MeetingsScheduled int64 `json:"meetingsScheduled"`
	TasksCompleted    int64 `json:"tasksCompleted"`
	AISuggestions     int64 `json:"aiSuggestions"`
}
