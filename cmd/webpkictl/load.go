package main

import (
	"encoding/pem"
	"fmt"
	"os"

	"github.com/japaric/webpki"
	"github.com/japaric/webpki/crl"
	"github.com/japaric/webpki/trustanchor"
)

// loadCertBundle reads every "CERTIFICATE" PEM block from path, in file
// order, generalized from "exactly one cert per file" to a concatenated
// bundle the way a root store or an intermediate fullchain.pem is typically
// distributed.
func loadCertBundle(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var ders [][]byte
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		ders = append(ders, block.Bytes)
	}
	if len(ders) == 0 {
		return nil, fmt.Errorf("no CERTIFICATE blocks found in %s", path)
	}
	return ders, nil
}

// loadAnchors reads path as a bundle of self-signed trust anchor
// certificates.
func loadAnchors(path string) ([]webpki.TrustAnchor, error) {
	ders, err := loadCertBundle(path)
	if err != nil {
		return nil, err
	}
	anchors := make([]webpki.TrustAnchor, 0, len(ders))
	for _, der := range ders {
		ta, err := trustanchor.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trust anchor: %w", err)
		}
		anchors = append(anchors, ta)
	}
	return anchors, nil
}

// loadCRLs reads path as a bundle of "X509 CRL" PEM blocks, the same way
// loadCertBundle reads a bundle of certificates.
func loadCRLs(path string) ([]*webpki.CertRevocationList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var out []*webpki.CertRevocationList
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "X509 CRL" {
			continue
		}
		l, err := crl.Parse(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CRL in %s: %w", path, err)
		}
		out = append(out, l)
	}
	return out, nil
}
