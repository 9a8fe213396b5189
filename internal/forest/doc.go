// Package forest implements CART regression trees and a bagged random forest
// regressor used by the imputer to predict missing numeric cells.
//
// Trees minimise squared error, place thresholds at midpoints between
// adjacent distinct values, and learn a direction for missing (NaN) feature
// values at every split. Forest fitting is parallel but deterministic: tree i
// always draws its bootstrap sample from a source seeded with RandomState+i.
package forest
