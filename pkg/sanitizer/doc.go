// Package sanitizer provides input normalization functions for slot and
// announcement data.
//
// All normalization functions are idempotent - applying them multiple
// times produces the same result. Functions handle invalid input
// gracefully, typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Slot numbers: Uppercase, keep letters/digits/dashes - " a 12 " becomes "A-12"
//   - Strings: Collapse whitespace, trim leading/trailing spaces
package sanitizer
