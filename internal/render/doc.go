// Package render produces intended device configuration from templates.
package render
