package dialect

// ModernDialect keeps the selection under "select" and allows mixed selection lists.
var ModernDialect = NewDialect(Modern).
	Describe(`Current schema: "select" key, mixed selection lists allowed`).
	Projection("select").
	AllowMixedProjections().
	Build()

// LegacyDialect keeps the selection under "project"; nested selections are mappings.
var LegacyDialect = NewDialect(Legacy).
	Describe(`Historical schema: "project" key, selection is a list or a mapping`).
	Projection("project").
	Build()

func init() {
	Register(ModernDialect)
	Register(LegacyDialect)
	// Query Objects are emitted in the legacy dialect unless configured otherwise.
	SetDefault(LegacyDialect)
}
