package chain_test

import (
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/japaric/webpki/algo"
	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/chain"
	"github.com/japaric/webpki/crl"
	"github.com/japaric/webpki/internal/testutil"
	"github.com/japaric/webpki/trustanchor"
	"github.com/japaric/webpki/wpkierror"
)

func mustParse(t *testing.T, der []byte) *cert.Cert {
	t.Helper()
	c, err := cert.Parse(der)
	require.NoError(t, err)
	return c
}

func mustAnchor(t *testing.T, ca *testutil.CA) trustanchor.TrustAnchor {
	t.Helper()
	ta, err := ca.TrustAnchor()
	require.NoError(t, err)
	return ta
}

func TestValidateSimpleChainToAnchor(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.NoError(t, err)
}

func TestValidateThroughIntermediate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	im, err := root.IssueIntermediate(
		pkix.Name{CommonName: "intermediate"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(2*time.Hour), testutil.IntermediateOptions{})
	require.NoError(t, err)

	leafDER, err := im.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	intermediate := mustParse(t, im.CertDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, []*cert.Cert{intermediate}, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.NoError(t, err)
}

func TestValidateRejectsExpiredLeaf(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-2*time.Hour), now.Add(-time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.Equal(t, wpkierror.CertExpired, err)
}

func TestValidateRejectsCAUsedAsEndEntity(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	im, err := root.IssueIntermediate(
		pkix.Name{CommonName: "intermediate"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(2*time.Hour), testutil.IntermediateOptions{})
	require.NoError(t, err)

	// Feed the intermediate itself as the "leaf": isCA is true, which must
	// be rejected for a node being validated as an end entity.
	leaf := mustParse(t, im.CertDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.Equal(t, wpkierror.CAUsedAsEndEntity, err)
}

func TestValidateRejectsMissingEKU(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}, NoEKU: true})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.Equal(t, wpkierror.RequiredEKUNotFound, err)
}

func TestValidateUnrestrictedSkipsEKU(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}, NoEKU: true})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.Unrestricted, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.NoError(t, err)
}

func TestValidateChainDepthExceeded(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(240*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	issuer := root
	var intermediates []*cert.Cert
	for i := 0; i < 7; i++ {
		// Distinct subjects, so each certificate has exactly one candidate
		// issuer and no signature check fails along the way.
		next, err := issuer.IssueIntermediate(
			pkix.Name{CommonName: "intermediate " + string(rune('0'+i))}, testutil.ECDSAP256,
			now.Add(-time.Hour), now.Add(120*time.Hour), testutil.IntermediateOptions{})
		require.NoError(t, err)
		intermediates = append(intermediates, mustParse(t, next.CertDER))
		issuer = next
	}

	leafDER, err := issuer.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)

	leaf := mustParse(t, leafDER)
	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, intermediates, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), nil, false, chain.DefaultBudget())
	require.Equal(t, wpkierror.UnknownIssuer, err)
}

func TestValidateRevokedCertIsRejected(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)
	leaf := mustParse(t, leafDER)

	serial := new(big.Int).SetBytes(leaf.SerialNumber)
	crlDER, err := root.IssueCRL(
		[]testutil.RevokedCert{{Serial: serial, RevocationTime: now.Add(-time.Minute), ReasonCode: 1}},
		now.Add(-time.Minute), now.Add(time.Hour), 1)
	require.NoError(t, err)
	revocationList, err := crl.Parse(crlDER)
	require.NoError(t, err)

	anchor := mustAnchor(t, root)

	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), []*crl.CertRevocationList{revocationList}, false, chain.DefaultBudget())
	require.Equal(t, wpkierror.CertRevoked, err)
}

func TestValidateSkipsPartialReasonCRL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}})
	require.NoError(t, err)
	leaf := mustParse(t, leafDER)

	serial := new(big.Int).SetBytes(leaf.SerialNumber)
	crlDER, err := root.IssueCRL(
		[]testutil.RevokedCert{{Serial: serial, RevocationTime: now.Add(-time.Minute), ReasonCode: 1}},
		now.Add(-time.Minute), now.Add(time.Hour), 1,
		testutil.IssuingDistributionPointOnlySomeReasonsExt())
	require.NoError(t, err)
	revocationList, err := crl.Parse(crlDER)
	require.NoError(t, err)

	anchor := mustAnchor(t, root)

	// A CRL scoped to a subset of revocation reasons is out of scope
	// entirely, so its entry for leaf's serial is never consulted.
	err = chain.Validate(leaf, nil, []trustanchor.TrustAnchor{anchor},
		chain.ServerAuth, algo.Default(), now.Unix(), []*crl.CertRevocationList{revocationList}, false, chain.DefaultBudget())
	require.NoError(t, err)
}
