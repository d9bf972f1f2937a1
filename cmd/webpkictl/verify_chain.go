package main

import (
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaric/webpki"
)

type verifyChainFlags struct {
	usage            string
	now              string
	acceptExpiredCRL bool
}

// newVerifyChainCmd implements "verify-chain": parse a leaf plus zero or
// more intermediates and run webpki.VerifyForUsage against the configured
// anchor and CRL bundles.
func newVerifyChainCmd(root *rootFlags) *cobra.Command {
	vf := &verifyChainFlags{}
	cmd := &cobra.Command{
		Use:   "verify-chain <leaf.pem> [intermediate.pem...]",
		Short: "Validate a certificate chain against a trust anchor set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyChain(cmd, root, vf, args)
		},
	}
	cmd.Flags().StringVar(&vf.usage, "usage", "server", "server, client, codesign or any")
	cmd.Flags().StringVar(&vf.now, "now", "", "validation time, RFC3339 (default: current time)")
	cmd.Flags().BoolVar(&vf.acceptExpiredCRL, "accept-expired-crl", false, "treat an authentic but stale CRL as coverage")
	return cmd
}

func usageByName(s string) (webpki.KeyUsage, error) {
	switch s {
	case "server":
		return webpki.ServerAuth, nil
	case "client":
		return webpki.ClientAuth, nil
	case "codesign":
		return webpki.CodeSigning, nil
	case "any":
		return webpki.Unrestricted, nil
	default:
		return webpki.KeyUsage{}, newUsageError("invalid --usage %q: must be server, client, codesign or any", s)
	}
}

func parseCertFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError("failed to read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, newUsageError("failed to decode PEM from %s", path)
	}
	return block.Bytes, nil
}

func runVerifyChain(cmd *cobra.Command, root *rootFlags, vf *verifyChainFlags, args []string) error {
	log := newLogger(root.logLevel).WithName("verify-chain")

	usage, err := usageByName(vf.usage)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	if vf.now != "" {
		t, err := time.Parse(time.RFC3339, vf.now)
		if err != nil {
			return newUsageError("invalid --now %q: %w", vf.now, err)
		}
		now = t.Unix()
	}

	anchorsPath := resolveConfig(root.anchorsPath, anchorsEnvVar, defaultAnchorsPath)
	crlsPath := resolveConfig(root.crlsPath, crlsEnvVar, defaultCRLsPath)

	anchors, err := loadAnchors(anchorsPath)
	if err != nil {
		return err
	}
	crls, err := loadCRLs(crlsPath)
	if err != nil {
		return err
	}
	log.V(1).Info("loaded trust material", "anchors", len(anchors), "crls", len(crls))

	leafDER, err := parseCertFile(args[0])
	if err != nil {
		return err
	}
	ee, err := webpki.ParseEndEntityCert(leafDER)
	if err != nil {
		return fmt.Errorf("failed to parse leaf certificate: %w", err)
	}

	var intermediates []webpki.EndEntityCert
	for _, p := range args[1:] {
		der, err := parseCertFile(p)
		if err != nil {
			return err
		}
		im, err := webpki.Intermediate(der)
		if err != nil {
			return fmt.Errorf("failed to parse intermediate %s: %w", p, err)
		}
		intermediates = append(intermediates, im)
	}

	err = ee.VerifyForUsage(intermediates, anchors, usage, now, crls, vf.acceptExpiredCRL, webpki.DefaultBudget())
	if err != nil {
		log.Info("chain invalid", "reason", err.Error())
		return fmt.Errorf("chain validation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "OK: valid chain to a trusted anchor")
	return nil
}
