// Package assign solves the optimal one-to-one assignment between two
// index sets under a cost matrix. The matcher uses it to resolve
// many-to-one descriptor match conflicts with a globally minimal total
// distance.
//
// Uses go-hungarian (MIT License) by Arthur Kushman for the underlying
// Hungarian algorithm.
package assign

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// Pair is one row-to-column assignment.
type Pair struct {
	Row int
	Col int
}

// Optimal finds the assignment minimizing total cost. Assignments whose
// cost exceeds maxCost are rejected. Rectangular matrices are padded to
// square internally. Returns the accepted pairs plus the unmatched row
// and column indices.
func Optimal(cost [][]float64, maxCost float64) ([]Pair, []int, []int) {
	numRows := len(cost)
	if numRows == 0 {
		return nil, nil, nil
	}
	numCols := len(cost[0])
	if numCols == 0 {
		unmatchedRows := make([]int, numRows)
		for i := range unmatchedRows {
			unmatchedRows[i] = i
		}
		return nil, unmatchedRows, nil
	}

	// The Hungarian solver maximizes profit, so convert cost to profit
	// against a ceiling above every real cost.
	maxProfit := 1.0
	for _, row := range cost {
		for _, c := range row {
			if c+1 > maxProfit {
				maxProfit = c + 1
			}
		}
	}

	size := numRows
	if numCols > size {
		size = numCols
	}
	profit := make([][]float64, size)
	for i := range profit {
		profit[i] = make([]float64, size)
		for j := range profit[i] {
			if i < numRows && j < numCols {
				profit[i][j] = maxProfit - cost[i][j]
			}
		}
	}

	result := hungarian.SolveMax(profit)

	var pairs []Pair
	matchedRows := make(map[int]bool)
	matchedCols := make(map[int]bool)
	for row, cols := range result {
		for col, p := range cols {
			c := maxProfit - p
			if row < numRows && col < numCols && c <= maxCost {
				pairs = append(pairs, Pair{Row: row, Col: col})
				matchedRows[row] = true
				matchedCols[col] = true
			}
		}
	}

	var unmatchedRows, unmatchedCols []int
	for i := 0; i < numRows; i++ {
		if !matchedRows[i] {
			unmatchedRows = append(unmatchedRows, i)
		}
	}
	for j := 0; j < numCols; j++ {
		if !matchedCols[j] {
			unmatchedCols = append(unmatchedCols, j)
		}
	}
	return pairs, unmatchedRows, unmatchedCols
}
