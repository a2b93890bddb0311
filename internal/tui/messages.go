package tui

// RowUpdateMsg updates a single row's fields by column name.
type RowUpdateMsg struct {
	Key    string
	Fields map[string]string
}

// AddRowsMsg appends rows once the work knows what it will process.
type AddRowsMsg struct {
	Rows []Row
}

// PhaseMsg names the pipeline phase now running.
type PhaseMsg struct {
	Phase  string
	Detail string
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
