package suggest

// Type is the kind of entity a suggestion points at.
type Type string

const (
	TypeRecent   Type = "recent"
	TypeQuote    Type = "quote"
	TypeAuthor   Type = "author"
	TypeBook     Type = "book"
	TypeTrending Type = "trending"
)

// Per-category caps of the merged list.
const (
	MaxRecent  = 2
	MaxQuotes  = 3
	MaxAuthors = 3
	MaxBooks   = 3
)

// Suggestion is one entry of the merged suggestion list. ID is set for
// quote, author and book suggestions.
type Suggestion struct {
	Type Type   `json:"type"`
	Text string `json:"text"`
	ID   string `json:"id,omitempty"`
}

// ActionKind says what activating a suggestion should do.
type ActionKind int

const (
	// ActionReplaceQuery replaces the search input with Activation.Query.
	ActionReplaceQuery ActionKind = iota
	// ActionNavigate opens the entity identified by Activation.Type and ID.
	ActionNavigate
)

// Activation is the result of activating the selected suggestion.
type Activation struct {
	Kind  ActionKind
	Query string
	Type  Type
	ID    string
}

func activationFor(s Suggestion) Activation {
	switch s.Type {
	case TypeRecent, TypeTrending:
		return Activation{Kind: ActionReplaceQuery, Query: s.Text}
	default:
		return Activation{Kind: ActionNavigate, Type: s.Type, ID: s.ID}
	}
}

// TrendingSuggestions turns configured trending terms into suggestions.
func TrendingSuggestions(terms []string) []Suggestion {
	out := make([]Suggestion, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		out = append(out, Suggestion{Type: TypeTrending, Text: term})
	}
	return out
}
