// Package ratio checks an image's aspect ratio against a list of exact values
// and open ranges.
//
// Operands are compared at a precision derived from their own text: the
// number of characters before the decimal point. 1.7778 therefore compares
// at one decimal place and 12.25 at two. Ratios are rounded half away from
// zero.
package ratio
