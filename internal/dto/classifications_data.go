// ClassificationsData is a paginated response payload for the classification history.
package dto

type ClassificationsData struct {
	Classifications []ClassificationInfo `json:"classifications"`
	Length          int                  `json:"length"`
	TotalPages      int                  `json:"totalPages"`
	CurrentPage     int                  `json:"currentPage"`
	Limit           int                  `json:"pageSize"`
}
