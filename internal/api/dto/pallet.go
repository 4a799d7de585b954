package dto

import "time"

type PackageRequest struct {
	BRCode string `json:"br_code"`
	Route  string `json:"route"`
}

type PackageResponse struct {
	BRCode    string    `json:"br_code"`
	Route     string    `json:"route"`
	Datetime  time.Time `json:"datetime"`
	UserToken *string   `json:"user_token"`
}

type CountsResponse struct {
	WorkingSet int `json:"working_set"`
	Pending    int `json:"pending"`
}

type PalletResponse struct {
	Packages []PackageResponse `json:"packages"`
	Counts   CountsResponse    `json:"counts"`
}

type FinalizeRequest struct {
	TargetPallet int    `json:"target_pallet"`
	Mode         string `json:"mode"`
}
