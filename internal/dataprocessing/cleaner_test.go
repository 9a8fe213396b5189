package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabprep/pkg/contracts/domain"
)

func TestClean(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("a", []float64{1, 1, 2, nan, 1, 3}),
		domain.NewTextColumn("b", []string{"x", "x", "y", "z", "x", ""}),
	)

	out, report := Clean(table)

	assert.Equal(t, CleanReport{
		OriginalRows:      6,
		OriginalCols:      2,
		MissingDropped:    2,
		DuplicatesDropped: 2,
		FinalRows:         2,
	}, report)
	assert.Equal(t, []float64{1, 2}, out.Columns[0].Nums)
	assert.Equal(t, []string{"x", "y"}, out.Columns[1].Texts)
	assert.Equal(t, table.Names(), out.Names())
	assert.Equal(t, report.OriginalRows-report.MissingDropped-report.DuplicatesDropped, report.FinalRows)
}

func TestCleanKeepsFirstOccurrenceOrder(t *testing.T) {
	table := mustTable(t,
		domain.NewNumericColumn("v", []float64{3, 1, 3, 2, 1}),
	)
	out, report := Clean(table)
	assert.Equal(t, []float64{3, 1, 2}, out.Columns[0].Nums)
	assert.Equal(t, 2, report.DuplicatesDropped)
}

func TestCleanTreatsSignedZeroAsEqual(t *testing.T) {
	negZero := math.Copysign(0, -1)
	table := mustTable(t, domain.NewNumericColumn("v", []float64{0, negZero}))
	_, report := Clean(table)
	assert.Equal(t, 1, report.DuplicatesDropped)
}

func TestCleanDistinguishesTextFromNumbers(t *testing.T) {
	table := mustTable(t,
		domain.NewTextColumn("a", []string{"1,", "1"}),
		domain.NewTextColumn("b", []string{"2", ",2"}),
	)
	_, report := Clean(table)
	assert.Zero(t, report.DuplicatesDropped)
}

func TestCleanNothingToDo(t *testing.T) {
	table := mustTable(t, domain.NewNumericColumn("v", []float64{1, 2}))
	out, report := Clean(table)
	assert.Equal(t, table, out)
	assert.Equal(t, 2, report.FinalRows)
}
