package cert_test

import (
	"crypto/x509/pkix"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/internal/testutil"
)

func TestParseExtractsExpectedFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	leafDER, err := root.IssueLeaf(
		pkix.Name{CommonName: "leaf"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(time.Hour),
		testutil.LeafOptions{DNSNames: []string{"example.com"}, IPs: nil})
	require.NoError(t, err)

	c, err := cert.Parse(leafDER)
	require.NoError(t, err)
	require.Equal(t, 3, c.Version)
	require.Equal(t, now.Add(-time.Hour).Unix(), c.NotBefore)
	require.Equal(t, now.Add(time.Hour).Unix(), c.NotAfter)
	require.NotNil(t, c.SubjectAltName)
	require.NotNil(t, c.ExtKeyUsage)
	require.NotNil(t, c.KeyUsage)

	_, unrecognized := c.UnrecognizedCritical()
	require.False(t, unrecognized)
}

func TestParseRejectsTrailingData(t *testing.T) {
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

	_, err = cert.Parse(append(leafDER, 0x00))
	require.Error(t, err)
}
