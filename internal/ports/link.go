package ports

// LinkRequest is one virtual link the host should draw: the byte range of the
// matched text, the entry it points at, and how to decorate it.
type LinkRequest struct {
	From      int      `json:"from"`
	To        int      `json:"to"`
	Text      string   `json:"text"`
	Target    string   `json:"target"`
	IsAlias   bool     `json:"is_alias,omitempty"`
	IsSubWord bool     `json:"is_sub_word,omitempty"`
	Suffix    string   `json:"suffix,omitempty"`
	Classes   []string `json:"classes"`
}

// Range is a half-open byte range of a document, e.g. a visible viewport.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}
