// Package api contains the request and response contracts of the table viewer.
package api

import (
	"tabprep/pkg/contracts/domain"
)

// RowsRequest holds the query parameters of GET /api/table/rows.
// Columns is a comma separated list of names or zero-based indices; empty
// selects every column.
type RowsRequest struct {
	Columns string `json:"columns" query:"columns"`
	Offset  int    `json:"offset" query:"offset" validate:"gte=0"`
	Limit   int    `json:"limit" query:"limit" validate:"gte=1"`
}

// ColumnInfo describes one column of the loaded table
type ColumnInfo struct {
	Index   int               `json:"index"`
	Name    string            `json:"name"`
	Kind    domain.ColumnKind `json:"kind"`
	Missing int               `json:"missing"`
}

// ColumnsResponse is returned by GET /api/table/columns
type ColumnsResponse struct {
	File    string       `json:"file"`
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// RowsResponse is returned by GET /api/table/rows.
// Missing cells are encoded as null.
type RowsResponse struct {
	Columns []string        `json:"columns"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
	Rows    [][]interface{} `json:"rows"`
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	File    string `json:"file"`
}
