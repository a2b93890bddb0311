package tools

// Status captures the resolved state of a required tool.
type Status struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version,omitempty"`
	Minimum   string            `json:"minimum,omitempty"`
	Path      string            `json:"path,omitempty"`
	Paths     map[string]string `json:"paths,omitempty"`
	Satisfied bool              `json:"satisfied"`
	Error     string            `json:"error,omitempty"`
	Hints     []string          `json:"hints,omitempty"`
}

// Binary returns the resolved path of one executable, or its bare name when
// detection did not find it.
func (s Status) Binary(id string) string {
	if path := s.Paths[id]; path != "" {
		return path
	}
	return executableName(id)
}

// BinarySpec describes an executable belonging to a tool.
type BinarySpec struct {
	ID            string
	Executable    string
	VersionSwitch string
}

// ToolDefinition contains what is needed to locate and check a tool.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	Binaries       []BinarySpec
}
