// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

/*
Package convert provides fault-tolerant string conversions.

It wraps [strconv] so that handler code parsing query parameters can fall
back to defaults instead of branching on parse errors. Do not use it where
distinguishing malformed input from a zero value matters.
*/
package convert

import "strconv"

// ToInt converts a string to an integer, returning 0 on empty or malformed input.
func ToInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

// ToIntD converts a string to an int, returning def on empty or malformed input.
func ToIntD(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ToBool parses a boolean string ("true", "1", "false", "0").
// It returns false on empty or malformed input.
func ToBool(s string) bool {
	if s == "" {
		return false
	}
	v, _ := strconv.ParseBool(s)
	return v
}
