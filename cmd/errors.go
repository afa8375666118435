package cmd

import (
	"strings"

	"sqlexport/exporterr"
)

// invalidObjectPatterns are driver messages for a table or view that does
// not exist, in English and Spanish locales.
var invalidObjectPatterns = []string{
	"ora-00942",
	"table or view does not exist",
	"is not a valid object name",
	"invalid object name",
	"el nombre de objeto",
	"la tabla o vista no existe",
	"does not exist",
	"no existe",
	"invalid table name",
	"could not find object",
	"no such table",
	"unknown table",
}

// isInvalidObjectError checks recursively for substrings indicating a missing
// table or view in any wrapped error.
func isInvalidObjectError(err error) bool {
	for err != nil {
		errStr := strings.ToLower(err.Error())
		for _, pat := range invalidObjectPatterns {
			if strings.Contains(errStr, pat) {
				return true
			}
		}
		if strings.Contains(errStr, "no es válido") && strings.Contains(errStr, "nombre de objeto") {
			return true
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return false
}

// invalidObjectHint returns advice for query errors caused by a missing
// table or view, or "" when err is something else.
func invalidObjectHint(err error) string {
	if exporterr.KindOf(err) != exporterr.KindQuery || !isInvalidObjectError(err) {
		return ""
	}
	return "Check that every table or view in the query exists and is spelled correctly. " +
		"If it belongs to another schema, use the qualified name (for example: schema.table)."
}
