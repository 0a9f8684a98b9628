package dashboard

// Summary is the treasurer's landing view: current balance and the two
// queues that need attention.
type Summary struct {
	Balance          int64 `json:"balance"`
	TotalIngresos    int64 `json:"total_ingresos"`
	TotalEgresos     int64 `json:"total_egresos"`
	PendingApproval  int64 `json:"pending_approval"`
	PendingExecution int64 `json:"pending_execution"`
}

// MonthlyTotal aggregates ledger movement for one calendar month.
type MonthlyTotal struct {
	Month    string `json:"month" db:"month"`
	Ingresos int64  `json:"ingresos" db:"ingresos"`
	Egresos  int64  `json:"egresos" db:"egresos"`
}

type MonthlyResponse struct {
	Months []MonthlyTotal `json:"months"`
}
