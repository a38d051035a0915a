package validator

// Pair is a delimiter pair whose occurrences must balance.
type Pair struct {
	Open  rune
	Close rune
	Name  string
}

// Marker is a substring every artifact must contain.
type Marker struct {
	Substring string
	Message   string
}

// Config is the rule table of a Validator.
type Config struct {
	// Pairs are checked for balance. Empty disables the check.
	Pairs []Pair

	// Markers must all be present. Empty disables the check.
	Markers []Marker

	// CheckColors enables the design-token color check.
	CheckColors bool

	// MaxColorViolations caps the reported color findings. 0 means unlimited.
	MaxColorViolations int

	// ListAllowed appends the allowed palette to every color finding.
	ListAllowed bool

	// StructuralTags are counted for closure. Empty disables the check.
	StructuralTags []string

	// VoidTags are never counted, even if listed in StructuralTags.
	VoidTags []string
}

// DefaultConfig returns the rules applied to Angular standalone components.
func DefaultConfig() Config {
	return Config{
		Pairs: []Pair{
			{Open: '{', Close: '}', Name: "curly braces {}"},
			{Open: '[', Close: ']', Name: "square brackets []"},
			{Open: '(', Close: ')', Name: "parentheses ()"},
		},
		Markers: []Marker{
			{Substring: "@Component", Message: "Missing @Component decorator. This is not a valid Angular component."},
			{Substring: "standalone: true", Message: "Missing 'standalone: true' in the @Component metadata. The component must be standalone."},
		},
		CheckColors: true,
		ListAllowed: true,
		StructuralTags: []string{
			"div", "section", "form", "button", "span", "ul", "ol", "li", "nav",
			"header", "footer", "main", "article", "aside", "label", "p", "a",
			"h1", "h2", "h3", "h4", "h5", "h6", "table", "thead", "tbody", "tr",
			"td", "th", "select", "option", "textarea", "ng-container", "ng-template",
		},
		VoidTags: []string{"input", "img", "br", "hr", "meta", "link", "source", "area", "col", "wbr"},
	}
}

// Option configures a Validator.
type Option func(*Config)

// WithConfig replaces the whole rule table.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithPairs replaces the delimiter pairs.
func WithPairs(pairs ...Pair) Option {
	return func(c *Config) {
		c.Pairs = pairs
	}
}

// WithMarkers replaces the required markers.
func WithMarkers(markers ...Marker) Option {
	return func(c *Config) {
		c.Markers = markers
	}
}

// WithoutColorCheck disables the design-token color check.
func WithoutColorCheck() Option {
	return func(c *Config) {
		c.CheckColors = false
	}
}

// WithMaxColorViolations caps the number of reported color findings.
func WithMaxColorViolations(n int) Option {
	return func(c *Config) {
		c.MaxColorViolations = n
	}
}

// WithStructuralTags replaces the tags counted for closure.
func WithStructuralTags(tags ...string) Option {
	return func(c *Config) {
		c.StructuralTags = tags
	}
}
