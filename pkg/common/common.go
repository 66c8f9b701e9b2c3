package common

// Document is a source file the upstream extraction pipeline consumed.
// RawContent is a truncated display copy, never the authoritative text.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	RawContent string `json:"raw_content"`
}

// TextUnit is a chunk of a document.
type TextUnit struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	NTokens int64  `json:"n_tokens"`
}

// Entity represents a node in the graph. An entity can be an organization,
// person, location, or any other relevant concept.
//
// ID is the only write key. Name is not unique and is used for lookups only.
type Entity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	Degree          int64  `json:"degree"`
	HumanReadableID int64  `json:"human_readable_id"`
}

// Relationship is a directed RELATES_TO edge between two entities,
// referenced by entity id.
type Relationship struct {
	ID              string  `json:"id"`
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	Description     string  `json:"description"`
	Weight          float64 `json:"weight"`
	HumanReadableID int64   `json:"human_readable_id"`
}

// Community is a precomputed cluster of entities at a hierarchy level.
type Community struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Level  int64  `json:"level"`
	Period string `json:"period"`
}

// CommunityReport enriches an existing Community. FullContent is truncated
// before it is written.
type CommunityReport struct {
	CommunityID     string  `json:"community_id"`
	Summary         string  `json:"summary"`
	FullContent     string  `json:"full_content"`
	Rank            float64 `json:"rank"`
	RankExplanation string  `json:"rank_explanation"`
	Findings        string  `json:"findings"`
}

// Embedding is the vector attached to an entity or relationship together
// with the text it was derived from.
type Embedding struct {
	Vector []float32 `json:"embedding"`
	Text   string    `json:"embedding_text"`
}

// Dimension is always the vector length.
func (e Embedding) Dimension() int {
	return len(e.Vector)
}

// EmbeddingCandidate is a graph element read back for enrichment.
// For entities Name/Type/Description are set, for relationships
// SourceName/TargetName/Description.
type EmbeddingCandidate struct {
	ID          string
	Name        string
	Type        string
	Description string
	SourceName  string
	TargetName  string
}

type GraphStats struct {
	TotalEntities      int64 `json:"total_entities"`
	TotalRelationships int64 `json:"total_relationships"`
	TotalCommunities   int64 `json:"total_communities"`
	TotalDocuments     int64 `json:"total_documents"`
	TotalTextUnits     int64 `json:"total_text_units"`
}

// EmbeddingStats counts embedded elements per kind.
type EmbeddingStats struct {
	EntitiesTotal          int64 `json:"entities_total"`
	EntitiesEmbedded       int64 `json:"entities_embedded"`
	RelationshipsTotal     int64 `json:"relationships_total"`
	RelationshipsEmbedded  int64 `json:"relationships_embedded"`
	EntityDimensions       []int `json:"entity_dimensions,omitempty"`
	RelationshipDimensions []int `json:"relationship_dimensions,omitempty"`

	// Sample is one embedded entity, nil when none is embedded.
	Sample *EmbeddingSample `json:"sample,omitempty"`
}

// EmbeddingSample shows the text an entity was embedded from.
type EmbeddingSample struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	Dimension int    `json:"dimension"`
}

type RelatedEntity struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Relationship string `json:"relationship"`
}

// SearchResult is one entity hit of a keyword or vector search.
type SearchResult struct {
	EntityID          string          `json:"entity_id"`
	EntityName        string          `json:"entity_name"`
	EntityType        string          `json:"entity_type"`
	EntityDescription string          `json:"entity_description"`
	Connections       int64           `json:"connections"`
	RelevanceScore    float64         `json:"relevance_score"`
	RelatedEntities   []RelatedEntity `json:"related_entities"`
	Communities       []string        `json:"communities"`
}

type ConnectedEntity struct {
	Entity     string `json:"entity"`
	Type       string `json:"type"`
	PathLength int64  `json:"path_length"`
}

// EntityDetail is the neighbourhood of one entity up to a bounded depth.
type EntityDetail struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	Description       string            `json:"description"`
	Degree            int64             `json:"degree"`
	ConnectedEntities []ConnectedEntity `json:"connected_entities"`
	Communities       []string          `json:"communities"`
}

type CommunitySummary struct {
	ID          string   `json:"community_id"`
	Title       string   `json:"community_title"`
	Summary     string   `json:"summary"`
	Level       int64    `json:"level"`
	Rank        float64  `json:"rank"`
	Members     []string `json:"members,omitempty"`
	MemberCount int64    `json:"member_count"`
}

type EntitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Degree      int64  `json:"degree"`
}
