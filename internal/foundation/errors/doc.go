// Package errors provides classified errors for sitebuilder.
//
// Every error a build can fail with carries a category and a severity:
//
//	err := errors.TemplateError("template not found").
//		WithContext("template", "post-page").
//		Build()
//
// Build stages stop on fatal and error severities and record warnings in the
// build report. The CLI adapter turns a classified error into a message and
// a process exit code.
package errors
