package dto

import "time"

type QueueItemResponse struct {
	BRCode string `json:"br_code"`
	Route  string `json:"route"`
}

type QueueEntryResponse struct {
	ID           string              `json:"id"`
	Packages     []QueueItemResponse `json:"packages"`
	CreatedAt    time.Time           `json:"created_at"`
	TargetPallet int                 `json:"target_pallet"`
	Mode         string              `json:"mode"`
}

type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Counts  CountsResponse       `json:"counts"`
}

type SyncResponse struct {
	Submitted int    `json:"submitted"`
	Discarded int    `json:"discarded"`
	Stop      string `json:"stop"`
	Message   string `json:"message,omitempty"`
}
