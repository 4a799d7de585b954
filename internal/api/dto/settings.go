package dto

// Fields left out of a PUT keep their current value.
type SettingsRequest struct {
	MaxPackages *int    `json:"max_packages"`
	LetterRange *string `json:"letter_range"`
	NumberRange *string `json:"number_range"`
}

type SettingsResponse struct {
	MaxPackages int    `json:"max_packages"`
	LetterRange string `json:"letter_range"`
	NumberRange string `json:"number_range"`
}
