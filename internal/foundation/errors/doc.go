// Package errors classifies sitebuilder failures.
//
// A ClassifiedError carries a category, a severity, a retry hint and a set of
// context fields. Location fields such as file, row or page_id are printed
// inline so an author can find the offending input:
//
//	err := errors.StructureError("duplicate page id").
//		WithContext("file", table).
//		WithContext("row", row).
//		Build()
//	// structure: duplicate page id [file=structure.csv row=7]
//
// CLIErrorAdapter maps categories to process exit codes.
package errors
