package wiki

import "time"

// Revision is one entry of a page history
type Revision struct {
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Slots     struct {
		Main struct {
			Content string `json:"content"`
		} `json:"main"`
	} `json:"slots"`
}

// PageRef is a title as returned by list queries
type PageRef struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

// page is the formatversion=2 shape of a page in query results
type page struct {
	Title     string     `json:"title"`
	Missing   bool       `json:"missing"`
	Invalid   bool       `json:"invalid"`
	Redirect  bool       `json:"redirect"`
	Revisions []Revision `json:"revisions"`
	Templates []PageRef  `json:"templates"`
}

type queryResult struct {
	Query struct {
		Pages  []page `json:"pages"`
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
	Continue map[string]string `json:"continue"`
}
