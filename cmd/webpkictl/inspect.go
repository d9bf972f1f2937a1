package main

import (
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/name"
)

// newInspectCmd implements "inspect": a read-only decode-and-print of one
// certificate's fields. It performs no path validation.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <cert.pem>",
		Short: "Decode and print a certificate's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError("failed to read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return newUsageError("failed to decode PEM from %s", path)
	}
	c, err := cert.Parse(block.Bytes)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version:     %d\n", c.Version)
	fmt.Fprintf(out, "Serial:      %s\n", hex.EncodeToString(c.SerialNumber))
	fmt.Fprintf(out, "Issuer:      %s\n", formatRawDN(c.IssuerRaw))
	fmt.Fprintf(out, "Subject:     %s\n", formatRawDN(c.SubjectRaw))
	fmt.Fprintf(out, "Not Before:  %s\n", time.Unix(c.NotBefore, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "Not After:   %s\n", time.Unix(c.NotAfter, 0).UTC().Format(time.RFC3339))

	if c.SubjectAltName != nil {
		fmt.Fprintln(out, "SAN:")
		err := name.EachName(nil, c.SubjectAltName, func(gn name.GeneralName) (bool, error) {
			switch gn.Tag {
			case name.TagDNSName:
				fmt.Fprintf(out, "  DNS:%s\n", string(gn.Value))
			case name.TagIPAddress:
				fmt.Fprintf(out, "  IP:%s\n", net.IP(gn.Value).String())
			}
			return false, nil
		})
		if err != nil {
			return fmt.Errorf("failed to decode subjectAltName: %w", err)
		}
	}

	if c.ExtKeyUsage != nil {
		var oids []asn1.ObjectIdentifier
		if _, err := asn1.Unmarshal(c.ExtKeyUsage, &oids); err == nil {
			fmt.Fprintln(out, "Extended Key Usage:")
			for _, oid := range oids {
				fmt.Fprintf(out, "  %s\n", oid.String())
			}
		}
	}

	if oid, ok := c.UnrecognizedCritical(); ok {
		fmt.Fprintf(out, "Unrecognized critical extension: %x\n", oid)
	}

	return nil
}
