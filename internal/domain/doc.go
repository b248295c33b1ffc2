// Package domain contains the core entities of the registry and the pure
// functions derived from them: age computation from a birth date and the
// age-range histogram used by the dashboard. Nothing in this package performs
// I/O or reads the wall clock implicitly; reference dates are always passed in.
package domain
