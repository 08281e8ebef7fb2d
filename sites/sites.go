// Package sites holds the registry-registered identities of the submitting sites
package sites

// Profile carries the FL SHOTS registration for one submitting site.
type Profile struct {
	LoginID         string // login id reported in MSH-3
	SiteID          string // administering site id for RXA-11
	SiteDescription string
	OrgName         string
}

// Directory maps an instance name to its site profile.
type Directory map[string]Profile

// Default is the fixed set of instances registered with the registry.
// FIU only ever had a login id upstream; it carries the shared Nomi site
// registration here so its lookups stay total.
var Default = Directory{
	"MDC":      {LoginID: "MGW36685", SiteID: "7000", SiteDescription: "Nomi Health, Inc", OrgName: "Nomi Health, Inc"},
	"FAMU":     {LoginID: "BCJ72636", SiteID: "8000", SiteDescription: "FLORIDA A&M UNIVERSITY SHS", OrgName: "FLORIDA A&M UNIVERSITY SHS"},
	"Amazon":   {LoginID: "MGW36685", SiteID: "7000", SiteDescription: "Nomi Health, Inc", OrgName: "Nomi Health, Inc"},
	"FIU":      {LoginID: "RRN66875", SiteID: "7000", SiteDescription: "Nomi Health, Inc", OrgName: "Nomi Health, Inc"},
	"NomiCare": {LoginID: "MGW36685", SiteID: "7000", SiteDescription: "Nomi Health, Inc", OrgName: "Nomi Health, Inc"},
}

// Lookup returns the profile for an instance name. An unknown instance is an
// explicit miss; callers must not build a message on a missing profile.
func (d Directory) Lookup(instance string) (Profile, bool) {
	p, ok := d[instance]
	return p, ok
}
