package dto

import "time"

type CacheStatsResponse struct {
	Articles  int64     `json:"articles"`
	Tags      int64     `json:"tags"`
	Comments  int64     `json:"comments"`
	Search    int64     `json:"search"`
	Feed      int64     `json:"feed"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

type CacheInvalidationResponse struct {
	Namespace string `json:"namespace"`
	Deleted   int64  `json:"deleted"`
}
