package api

type Platform struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Footer      string `json:"footer"`
}
