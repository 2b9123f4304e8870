package model

// Rule is one routing rule line of the output document.
type Rule struct {
	Type      string // DOMAIN / DOMAIN-SUFFIX / DOMAIN-KEYWORD / IP-CIDR / GEOIP / MATCH
	Value     string // domain/suffix/keyword/cidr/country code; empty for MATCH
	Action    string // DIRECT / REJECT / group name
	NoResolve bool   // only meaningful for IP-CIDR
}
