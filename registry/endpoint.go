// Package registry provides the SOAP delivery client for the FL SHOTS
// immunization registry.
package registry

import "strings"

// Endpoint represents a specific FL SHOTS SOAP server.
type Endpoint int

// A list of endpoints
const (
	UnknownEndpoint    Endpoint = iota // unknown
	ProductionEndpoint                 // live registry
	TestingEndpoint                    // registry acceptance testing
)

var endpointURLs = [...]string{
	"",
	"https://www.flshots.com/interop/InterOp.Service.HL7IISMethods.cls",
	"https://test.flshots.com/interop/InterOp.Service.HL7IISMethods.cls",
}

var endpointNames = [...]string{
	"unknown",
	"production",
	"testing",
}

// LookupEndpoint returns an endpoint for (P)roduction or (T)esting
func LookupEndpoint(s string) Endpoint {
	s2 := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(s2, "P"):
		return ProductionEndpoint
	case strings.HasPrefix(s2, "T"):
		return TestingEndpoint
	}
	return UnknownEndpoint
}

// URL returns the default URL of this endpoint
func (ep Endpoint) URL() string {
	return endpointURLs[ep]
}

// Name returns the name of this endpoint
func (ep Endpoint) Name() string {
	return endpointNames[ep]
}
