// internal/model/import_result.go
package model

// ImportResult aggregates a best-effort batch. Success+Failed equals the
// number of processed records and len(Errors) equals Failed.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

func NewImportResult() *ImportResult {
	return &ImportResult{Errors: []string{}}
}

func (r *ImportResult) AddSuccess() {
	r.Success++
}

func (r *ImportResult) AddFailure(msg string) {
	r.Failed++
	r.Errors = append(r.Errors, msg)
}
