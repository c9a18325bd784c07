package model

// ExamURI binds the exam id path parameter.
type ExamURI struct {
	ExamID string `uri:"exam_id" binding:"required,mongodb"`
}

// GenerationURI binds the exam id and environment path parameters.
type GenerationURI struct {
	ExamID      string `uri:"exam_id" binding:"required,mongodb"`
	Environment string `uri:"environment" binding:"required,oneof=Staging Production"`
}

// GenerationQuery selects the representation and page of a generation list.
type GenerationQuery struct {
	Format  string `form:"format" binding:"omitempty,oneof=wire application"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=500"`
}

// AnalyzeRequest carries wire-format generated exams to analyze.
type AnalyzeRequest struct {
	Generations []any `json:"generations" binding:"required"`
}

// WireQuery sets the depth the wire conversion starts at. Use -1 when the
// body is a top-level array of documents.
type WireQuery struct {
	RootDepth int `form:"root_depth" binding:"omitempty,oneof=0 -1"`
}
