package operations

import (
	"tabprep/internal/dataprocessing"
	"tabprep/pkg/contracts/domain"
)

// ImputeResult is returned by Runner.Impute
type ImputeResult struct {
	Summary domain.RunSummary
	Output  string
	Report  *dataprocessing.ImputeReport
}

// CleanResult is returned by Runner.Clean
type CleanResult struct {
	Summary domain.RunSummary
	Output  string
	Report  dataprocessing.CleanReport
}

// TransformRequest describes a transform run. Output may be empty, in which
// case the result is written next to the input.
type TransformRequest struct {
	Input   string              `json:"input" validate:"required"`
	Output  string              `json:"output,omitempty"`
	Kind    dataprocessing.Kind `json:"kind"`
	Columns []string            `json:"columns"`
}

// TransformResult is returned by Runner.Transform
type TransformResult struct {
	Summary domain.RunSummary
	Output  string
	Kind    dataprocessing.Kind
	Columns []string
}
