package logg

// Structured log field keys shared by every layer.
const (
	Layer     = "layer"
	Operation = "op"
	Site      = "site"
	Page      = "page"
	Element   = "element"
	Selector  = "selector"
	Role      = "role"
	Version   = "version"
	Strategy  = "strategy"
	Path      = "path"
	Score     = "score"
	URL       = "url"
)
