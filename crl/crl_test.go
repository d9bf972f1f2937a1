package crl_test

import (
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/crl"
	"github.com/japaric/webpki/internal/testutil"
)

func TestParseExtractsThisAndNextUpdate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	crlDER, err := root.IssueCRL(nil, now, now.Add(time.Hour), 1)
	require.NoError(t, err)

	list, err := crl.Parse(crlDER)
	require.NoError(t, err)
	require.Equal(t, now.Unix(), list.ThisUpdate)
	require.True(t, list.HasNext)
	require.Equal(t, now.Add(time.Hour).Unix(), list.NextUpdate)
}

func TestLookupFindsRevokedSerial(t *testing.T) {
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
	leaf, err := cert.Parse(leafDER)
	require.NoError(t, err)

	serial := new(big.Int).SetBytes(leaf.SerialNumber)
	crlDER, err := root.IssueCRL(
		[]testutil.RevokedCert{{Serial: serial, RevocationTime: now.Add(-time.Minute), ReasonCode: 4}},
		now.Add(-time.Minute), now.Add(time.Hour), 1)
	require.NoError(t, err)

	list, err := crl.Parse(crlDER)
	require.NoError(t, err)

	entry, found := list.Lookup(leaf.SerialNumber)
	require.True(t, found)
	require.Equal(t, 4, entry.Reason)
	require.Equal(t, now.Add(-time.Minute).Unix(), entry.RevocationDate)

	_, found = list.Lookup([]byte{0x7F})
	require.False(t, found)
}

func TestInScopeMatchesDirectIssuer(t *testing.T) {
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
	leaf, err := cert.Parse(leafDER)
	require.NoError(t, err)

	crlDER, err := root.IssueCRL(nil, now, now.Add(time.Hour), 1)
	require.NoError(t, err)
	list, err := crl.Parse(crlDER)
	require.NoError(t, err)

	require.True(t, list.InScope(leaf.IssuerRaw, false))
}

func TestInScopeRejectsUnrelatedIssuer(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)
	other, err := testutil.NewRoot(
		pkix.Name{CommonName: "other"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	crlDER, err := root.IssueCRL(nil, now, now.Add(time.Hour), 1)
	require.NoError(t, err)
	list, err := crl.Parse(crlDER)
	require.NoError(t, err)

	otherCert, err := cert.Parse(other.CertDER)
	require.NoError(t, err)
	require.False(t, list.InScope(otherCert.IssuerRaw, false))
}

func TestInScopeRejectsPartialReasonCRL(t *testing.T) {
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
	leaf, err := cert.Parse(leafDER)
	require.NoError(t, err)

	crlDER, err := root.IssueCRL(nil, now, now.Add(time.Hour), 1,
		testutil.IssuingDistributionPointOnlySomeReasonsExt())
	require.NoError(t, err)

	list, err := crl.Parse(crlDER)
	require.NoError(t, err)
	require.True(t, list.HasIDP)
	require.NotNil(t, list.IDP.OnlySomeReasons)

	require.False(t, list.InScope(leaf.IssuerRaw, false))
}

func TestParseRejectsTrailingData(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root, err := testutil.NewRoot(
		pkix.Name{CommonName: "root"}, testutil.ECDSAP256,
		now.Add(-time.Hour), now.Add(24*time.Hour), testutil.RootOptions{})
	require.NoError(t, err)

	crlDER, err := root.IssueCRL(nil, now, now.Add(time.Hour), 1)
	require.NoError(t, err)

	_, err = crl.Parse(append(crlDER, 0x00))
	require.Error(t, err)
}
