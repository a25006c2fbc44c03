package domain

// FetchProgress is the transient state reported while a bulk remote fetch is
// running. It is created when the fetch starts, updated as pages arrive and
// cleared on completion or error.
type FetchProgress struct {
	IsFetching   bool `json:"isFetching"`
	Progress     int  `json:"progress"` // 0-100
	TotalItems   int  `json:"totalItems"`
	CurrentItems int  `json:"currentItems"`
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	IsComplete   bool `json:"isComplete"`
}
