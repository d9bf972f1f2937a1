package main

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"strings"
)

// formatRawDN decodes a raw Name TLV (cert.Cert.SubjectRaw/IssuerRaw) for
// display purposes only, using encoding/asn1 and crypto/x509/pkix to rebuild
// a pkix.Name from DER bytes. Nothing in the validation engine calls this;
// it exists only to make "inspect" output readable.
func formatRawDN(raw []byte) string {
	var rdns pkix.RDNSequence
	if _, err := asn1.Unmarshal(raw, &rdns); err != nil {
		return "<unparsed DN>"
	}
	var name pkix.Name
	name.FillFromRDNSequence(&rdns)
	return formatDN(name)
}

// formatDN renders a pkix.Name in CN, O, OU, L, ST, C order, empty fields
// skipped.
func formatDN(name pkix.Name) string {
	var parts []string
	if name.CommonName != "" {
		parts = append(parts, "CN="+name.CommonName)
	}
	for _, o := range name.Organization {
		parts = append(parts, "O="+o)
	}
	for _, ou := range name.OrganizationalUnit {
		parts = append(parts, "OU="+ou)
	}
	for _, l := range name.Locality {
		parts = append(parts, "L="+l)
	}
	for _, st := range name.Province {
		parts = append(parts, "ST="+st)
	}
	for _, c := range name.Country {
		parts = append(parts, "C="+c)
	}
	return strings.Join(parts, ",")
}
