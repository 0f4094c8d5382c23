// Package environment propagates the current application environment
// (development, staging, production) through context.Context, HTTP requests
// and structured logs.
//
// All helpers are allocation-free and never return errors; missing values
// simply result in the zero value ("").
package environment
