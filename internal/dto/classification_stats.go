package dto

// ClassificationStats summarizes the stored history.
type ClassificationStats struct {
	Total    int            `json:"total"`
	PerLabel map[string]int `json:"perLabel"`
	Alerts   int            `json:"alerts"`
}
