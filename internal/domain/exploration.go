package domain

// Exploration is every requested category for one resolved location. A
// category that was not requested or failed is null; failures are also
// recorded in Errors.
type Exploration struct {
	Location Location         `json:"location"`
	Weather  []Weather        `json:"weather"`
	Events   []Event          `json:"events"`
	Movies   []Movie          `json:"movies"`
	Yelp     []BusinessReview `json:"yelp"`
	Errors   map[string]error `json:"-"`
}
