package queries

// ForestCacheKey is the cache entry holding the rendered forest. Write
// handlers delete it after every insert.
const ForestCacheKey = "forest:all"

// ListForestQuery represents a query for every tree in the system
type ListForestQuery struct{}

// Validate validates the ListForestQuery
func (q ListForestQuery) Validate() error {
	return nil
}

// TreeNodeView is one node of a rendered tree. Values are decimal strings
// so clients never lose precision to binary floats. Operation, operand and
// parent id are absent on roots.
type TreeNodeView struct {
	ID        string         `json:"id"`
	Value     string         `json:"value"`
	Operation *string        `json:"operation,omitempty"`
	Operand   *string        `json:"operand,omitempty"`
	ParentID  *string        `json:"parentId,omitempty"`
	AuthorID  string         `json:"authorId"`
	CreatedAt string         `json:"createdAt"`
	Children  []TreeNodeView `json:"children"`
}

// ListForestResult represents the rendered forest
type ListForestResult struct {
	Roots     []TreeNodeView `json:"roots"`
	NodeCount int            `json:"nodeCount"`
}
