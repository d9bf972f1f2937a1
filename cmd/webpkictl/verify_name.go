package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaric/webpki"
	"github.com/japaric/webpki/name"
)

type verifyNameFlags struct {
	ip bool
}

// newVerifyNameCmd implements "verify-name": check whether a certificate's
// identity fields cover a subject name, independent of chain trust.
func newVerifyNameCmd() *cobra.Command {
	vf := &verifyNameFlags{}
	cmd := &cobra.Command{
		Use:   "verify-name <cert.pem> <name>",
		Short: "Check whether a certificate is valid for a DNS name or IP address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyName(cmd, vf, args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&vf.ip, "ip", false, "match as an IP address literal instead of a DNS name")
	return cmd
}

func runVerifyName(cmd *cobra.Command, vf *verifyNameFlags, certPath, subject string) error {
	der, err := parseCertFile(certPath)
	if err != nil {
		return err
	}
	ee, err := webpki.ParseEndEntityCert(der)
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	var sn webpki.SubjectName
	if vf.ip {
		ip, err := name.NewIPAddress(subject)
		if err != nil {
			return newUsageError("invalid IP address %q: %w", subject, err)
		}
		sn = name.NewIPSubjectName(ip)
	} else {
		dns, err := name.NewDNSID(subject)
		if err != nil {
			return newUsageError("invalid DNS name %q: %w", subject, err)
		}
		sn = name.NewDNSSubjectName(dns)
	}

	if err := ee.VerifyIsValidForSubjectName(sn); err != nil {
		return fmt.Errorf("name check failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: certificate is valid for %s\n", subject)
	return nil
}
