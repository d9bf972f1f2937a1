package webpki_test

import (
	"crypto/x509/pkix"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	webpki "github.com/japaric/webpki"
	"github.com/japaric/webpki/internal/testutil"
	"github.com/japaric/webpki/name"
)

func TestEndToEndValidChain(t *testing.T) {
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
		pkix.Name{CommonName: "leaf"}, testutil.RSA2048,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"www.example.com"}})
	require.NoError(t, err)

	ee, err := webpki.ParseEndEntityCert(leafDER)
	require.NoError(t, err)

	anchor, err := root.TrustAnchor()
	require.NoError(t, err)
	intermediate, err := webpki.Intermediate(im.CertDER)
	require.NoError(t, err)

	err = ee.VerifyForUsage(
		[]webpki.EndEntityCert{intermediate},
		[]webpki.TrustAnchor{anchor},
		webpki.ServerAuth,
		now.Unix(), nil, false, webpki.DefaultBudget())
	require.NoError(t, err)

	dns, err := name.NewDNSID("www.example.com")
	require.NoError(t, err)
	require.NoError(t, ee.VerifyIsValidForSubjectName(name.NewDNSSubjectName(dns)))

	other, err := name.NewDNSID("other.example.com")
	require.NoError(t, err)
	require.Error(t, ee.VerifyIsValidForSubjectName(name.NewDNSSubjectName(other)))
}

func TestVerifyForUsageFailsWithoutAnchor(t *testing.T) {
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

	ee, err := webpki.ParseEndEntityCert(leafDER)
	require.NoError(t, err)

	err = ee.VerifyForUsage(nil, nil, webpki.ServerAuth, now.Unix(), nil, false, webpki.DefaultBudget())
	require.Error(t, err)
}
