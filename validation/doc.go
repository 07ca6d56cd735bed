// Package validation provides input validation for voicebridge configuration.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for the pipeline configuration surface; programmatic validation backs
// semantic checks that tags cannot express (known language codes, known
// service names).
//
// # Struct Tag Validation
//
//	type Config struct {
//	    SourceLanguage string `validate:"required,len=2"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.AddError("target_language", "unknown language code")
//	err := v.Validate()
package validation
