package tfcode

// BlockKind identifies a top-level Terraform block type
type BlockKind string

const (
	KindResource  BlockKind = "resource"
	KindModule    BlockKind = "module"
	KindData      BlockKind = "data"
	KindOutput    BlockKind = "output"
	KindVariable  BlockKind = "variable"
	KindLocals    BlockKind = "locals"
	KindProvider  BlockKind = "provider"
	KindTerraform BlockKind = "terraform"
)

// Block is a parsed configuration block. Config holds the block body as a
// nested key-value structure where leaf values are the raw expression text;
// references are extracted by scanning those strings.
type Block struct {
	Kind      BlockKind      `json:"block_type"`
	Type      string         `json:"type,omitempty"` // resource or data source type
	Name      string         `json:"name,omitempty"`
	Address   string         `json:"address,omitempty"`
	Config    map[string]any `json:"config"`
	File      string         `json:"file"`       // path relative to the infrastructure root
	FileName  string         `json:"file_name"`  // base name without extension
	GroupPath string         `json:"group_path"` // directory relative to the infrastructure root
}

// ParseError records a file that failed to parse. Parsing continues past
// broken files.
type ParseError struct {
	File    string `json:"file"`
	Message string `json:"error"`
}

// Snapshot is the parsed view of one branch's infrastructure directory
type Snapshot struct {
	Blocks []*Block     `json:"blocks"`
	Errors []ParseError `json:"parse_errors,omitempty"`
}

// ReferenceType classifies an edge between two blocks
type ReferenceType string

const (
	RefVariable   ReferenceType = "variable_reference"
	RefModule     ReferenceType = "module_dependency"
	RefDataSource ReferenceType = "datasource_dependency"
	RefLocal      ReferenceType = "local_reference"
	RefResource   ReferenceType = "resource_to_resource"
)

// Reference is a directed edge from one block to another, inferred from
// interpolation syntax in the source. Attribute carries the referenced
// attribute or module output name when the pattern captures one.
type Reference struct {
	From      string        `json:"from"`
	To        string        `json:"to"`
	Type      ReferenceType `json:"type"`
	Attribute string        `json:"attribute,omitempty"`
}

// AddressSet is the set of valid block addresses in a snapshot
type AddressSet map[string]struct{}

// Contains reports whether addr is a valid address
func (s AddressSet) Contains(addr string) bool {
	_, ok := s[addr]
	return ok
}
