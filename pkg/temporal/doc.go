// Package temporal validates date/time fields on request objects.
//
// A Normalizer checks a single value (UTC offset, precision, past/future, age).
// A Field binds a request field name to an accessor. A RangeRule checks ordering,
// same-day, same-offset, span and interval invariants between two normalized
// values. A Binding ties two Fields and a Config together once per request type
// and is reused for every request.
//
// Bad input is reported as Violations carrying message keys; wiring mistakes
// (contradictory Config, unnamed or duplicate fields, unsupported value types)
// surface as errors from the constructors or as panics from the Must variants.
package temporal
