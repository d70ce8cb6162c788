package domain

// IDSet is a set of ids
type IDSet map[string]struct{}

// NewIDSet builds a set from ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Slice returns the members in no particular order
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// FeedContext is resolved once per feed request and never persisted
type FeedContext struct {
	ViewerID          string
	FollowedAuthorIDs IDSet
	BlockedAuthorIDs  IDSet
	InteractedItemIDs IDSet
	Page              int
	PageSize          int
}

// AuthorIDs returns followed authors plus the viewer, minus blocked authors
func (fc *FeedContext) AuthorIDs() []string {
	authors := NewIDSet(fc.ViewerID)
	for id := range fc.FollowedAuthorIDs {
		authors.Add(id)
	}
	out := make([]string, 0, len(authors))
	for id := range authors {
		if !fc.BlockedAuthorIDs.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Offset is the index of the first organic item of the page
func (fc *FeedContext) Offset() int {
	return (fc.Page - 1) * fc.PageSize
}

// FeedItem is a ranked post. Score is kept server side only since a
// malformed item carries -Inf, which JSON cannot encode.
type FeedItem struct {
	Post
	Sponsored  bool    `json:"sponsored"`
	Interacted bool    `json:"interacted"`
	Score      float64 `json:"-"`
}

// Pagination describes a feed page
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	HasMore    bool `json:"hasMore"`
}

// FeedResponse GET /feed payload
type FeedResponse struct {
	Items      []FeedItem `json:"items"`
	Stories    []Story    `json:"stories"`
	Pagination Pagination `json:"pagination"`
}
