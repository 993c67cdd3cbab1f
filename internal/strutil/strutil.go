// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package strutil provides small string normalization helpers for values read
// from configuration files and model output.
package strutil

import (
	"regexp"
	"strings"
)

// falseSynonyms are the strings treated as false when parsing boolean
// configuration values. Everything else parses as true.
var falseSynonyms = map[string]struct{}{
	"False": {},
	"false": {},
	"FALSE": {},
	"F":     {},
	"f":     {},
	"No":    {},
	"NO":    {},
	"N":     {},
	"no":    {},
	"0":     {},
}

// ParseBool parses synonyms for "true" and "false" as found in configuration
// files. Leading and trailing whitespace is ignored.
func ParseBool(val string) bool {
	_, isFalse := falseSynonyms[strings.TrimSpace(val)]
	return !isFalse
}

var (
	trailingComma = regexp.MustCompile(`,\s*$`)
	trailingSpace = regexp.MustCompile(`\s*$`)
)

// TrimTrailingComma removes a single trailing comma, if any, from a string.
// Any whitespace after the comma is removed with it.
func TrimTrailingComma(s string) string {
	return trailingComma.ReplaceAllString(s, "")
}

// Chomp removes trailing whitespace, if any, from a string.
func Chomp(s string) string {
	return trailingSpace.ReplaceAllString(s, "")
}
