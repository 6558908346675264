// Package project defines the ProjectInfo record collected before a template
// is materialized, and the validation rules the name and version must pass
// before they are interpolated into generated files.
package project
