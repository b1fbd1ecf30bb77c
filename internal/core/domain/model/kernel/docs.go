// Package kernel holds value objects shared by several aggregates:
// auction sites and vehicle pricing categories.
package kernel
