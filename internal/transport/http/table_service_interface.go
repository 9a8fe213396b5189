package http

import (
	"context"

	"tabprep/pkg/contracts/api/v1"
)

// TableServiceInterface defines the table queries the viewer serves
type TableServiceInterface interface {
	Columns(ctx context.Context) api.ColumnsResponse
	Rows(ctx context.Context, req api.RowsRequest) (api.RowsResponse, error)
}
