// Package chain implements the depth-first path builder and validator: the
// part of the engine that decides whether a trusted, unexpired, unrevoked
// chain exists from an end-entity certificate to a trust anchor whose
// subject identifiers cover a caller-supplied peer name.
package chain

import (
	"bytes"

	"github.com/japaric/webpki/cert"
	"github.com/japaric/webpki/crl"
	"github.com/japaric/webpki/name"
	"github.com/japaric/webpki/signeddata"
	"github.com/japaric/webpki/trustanchor"
	"github.com/japaric/webpki/wpkierror"
)

// maxSubCACount bounds chain depth regardless of any cert's own
// pathLenConstraint: RFC 5280 profiles of web PKI never need more than a
// handful of intermediates, and an unbounded depth is an easy way to force
// unbounded search against an adversarial fan-out of intermediates.
const maxSubCACount = 6

// Validate runs the depth-first search described by the path builder: try
// every trust anchor whose subject matches the current node's issuer before
// falling back to intermediates, verifying signatures, self-consistency,
// name constraints and (at the point a trust anchor is reached) CRL
// coverage. ee must have already been parsed; intermediates is an unordered
// slice tried in the given order at every level. acceptExpiredCRL makes an
// otherwise-authentic but stale CRL count as coverage rather than as
// UnknownRevocationStatus.
func Validate(
	ee *cert.Cert,
	intermediates []*cert.Cert,
	anchors []trustanchor.TrustAnchor,
	usage KeyUsage,
	algs []signeddata.Algorithm,
	now int64,
	crls []*crl.CertRevocationList,
	acceptExpiredCRL bool,
	budget Budget,
) error {
	s := &search{
		intermediates:    intermediates,
		anchors:          anchors,
		usage:            usage,
		algs:             algs,
		now:              now,
		crls:             crls,
		acceptExpiredCRL: acceptExpiredCRL,
		budget:           &budget,
	}
	return s.buildPath(ee, true, []*cert.Cert{ee}, nil, nil, 0)
}

type search struct {
	intermediates    []*cert.Cert
	anchors          []trustanchor.TrustAnchor
	usage            KeyUsage
	algs             []signeddata.Algorithm
	now              int64
	crls             []*crl.CertRevocationList
	acceptExpiredCRL bool
	budget           *Budget
}

// buildPath tries to complete a trust path for child. path is every cert
// from the end entity down to and including child, in that order. ncChain
// is the NameConstraints extension value of every ancestor intermediate
// that declared one (child's own, if any, is already included by the
// caller). visitedSPKI is the SPKI of every intermediate already used on
// this path, for cycle avoidance. subCACount is the number of intermediates
// on path, child included: 0 for the end entity, 1 for the intermediate
// directly above it, and so on.
func (s *search) buildPath(child *cert.Cert, isEE bool, path []*cert.Cert, ncChain [][]byte, visitedSPKI [][]byte, subCACount int) error {
	if err := checkSelfConsistency(child, s.now, isEE, subCACount, s.usage); err != nil {
		return err
	}

	var best wpkierror.Error

	for _, anchor := range s.anchors {
		if !bytes.Equal(anchor.SubjectDN, child.IssuerRaw) {
			continue
		}
		if err := s.budget.consumeSigCheck(); err != nil {
			return err
		}
		if err := signeddata.VerifySignedData(s.algs, anchor.SPKI, child.SignedData); err != nil {
			best = recordBest(best, asError(err))
			continue
		}
		fullNC := append(append([][]byte{}, ncChain...), anchor.NameConstraints)
		if err := applyNameConstraints(fullNC, path); err != nil {
			best = recordBest(best, asError(err))
			continue
		}
		if err := s.consultCRLs(path, anchor); err != nil {
			best = recordBest(best, asError(err))
			continue
		}
		return nil
	}

	for _, im := range s.intermediates {
		if !bytes.Equal(im.SubjectRaw, child.IssuerRaw) {
			continue
		}
		if spkiSeen(visitedSPKI, im.SPKIRaw) {
			continue
		}
		if err := s.budget.consumeSigCheck(); err != nil {
			return err
		}
		if err := signeddata.VerifySignedData(s.algs, im.SPKIRaw, child.SignedData); err != nil {
			best = recordBest(best, asError(err))
			continue
		}

		newCount := subCACount + 1
		if newCount >= maxSubCACount {
			best = recordBest(best, wpkierror.UnknownIssuer)
			continue
		}

		if err := s.budget.consumePathBuild(); err != nil {
			return err
		}

		nextNC := ncChain
		if im.NameConstraints != nil {
			nextNC = append(append([][]byte{}, ncChain...), im.NameConstraints)
		}
		nextPath := append(append([]*cert.Cert{}, path...), im)
		nextVisited := append(append([][]byte{}, visitedSPKI...), im.SPKIRaw)

		err := s.buildPath(im, false, nextPath, nextNC, nextVisited, newCount)
		if err == nil {
			return nil
		}
		if isFatal(err) {
			return err
		}
		best = recordBest(best, asError(err))
	}

	if best == 0 {
		return wpkierror.UnknownIssuer
	}
	return best
}

// checkSelfConsistency validates one node in isolation: validity window,
// the basic-constraints cA/pathLen rules (different on an end entity than
// on an intermediate), EKU and key-usage when usage requires them, and
// rejection of any unrecognized critical extension.
func checkSelfConsistency(c *cert.Cert, now int64, isEE bool, subCACount int, usage KeyUsage) error {
	if now < c.NotBefore {
		return wpkierror.CertNotValidYet
	}
	if now > c.NotAfter {
		return wpkierror.CertExpired
	}

	if _, ok := c.UnrecognizedCritical(); ok {
		return wpkierror.UnsupportedCriticalExtension
	}

	bc, err := parseBasicConstraints(c.BasicConstraints)
	if err != nil {
		return err
	}
	if isEE {
		if bc.isCA {
			return wpkierror.CAUsedAsEndEntity
		}
	} else {
		if !bc.isCA {
			return wpkierror.EndEntityUsedAsCA
		}
		if bc.hasPathLen && bc.pathLen < subCACount {
			return wpkierror.PathLenConstraintViolated
		}
	}

	if isEE && !usage.unrestricted {
		if c.ExtKeyUsage == nil {
			return wpkierror.RequiredEKUNotFound
		}
		ekus, err := parseExtKeyUsage(c.ExtKeyUsage)
		if err != nil {
			return err
		}
		found := false
		for _, e := range ekus {
			if bytes.Equal(e, ekuAnyExtended) || bytes.Equal(e, usage.ekuOID) {
				found = true
				break
			}
		}
		if !found {
			return wpkierror.RequiredEKUNotFound
		}

		if usage.requireDigitalSignature && c.KeyUsage != nil {
			set, err := keyUsageBitSet(c.KeyUsage, digitalSignatureBit)
			if err != nil {
				return err
			}
			if !set {
				return wpkierror.RequiredEKUNotFound
			}
		}
	}

	return nil
}

// applyNameConstraints checks every name of every cert in path against
// every ancestor's Subtrees independently, per RFC 5280: each CA's
// constraint is evaluated on its own, not merged with another CA's.
func applyNameConstraints(ncList [][]byte, path []*cert.Cert) error {
	var subtrees []name.Subtrees
	for _, nc := range ncList {
		if nc == nil {
			continue
		}
		st, err := name.ParseNameConstraints(nc)
		if err != nil {
			return err
		}
		subtrees = append(subtrees, st)
	}
	if len(subtrees) == 0 {
		return nil
	}
	for _, c := range path {
		err := name.EachName(c.SubjectRaw, c.SubjectAltName, func(gn name.GeneralName) (bool, error) {
			for _, st := range subtrees {
				if err := name.CheckPresentedName(st, gn); err != nil {
					return true, err
				}
			}
			return false, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// consultCRLs checks revocation: for every cert from the end entity
// through the final intermediate (the trust anchor itself is never
// checked), any in-scope supplied CRL must be authentic and must not list
// the cert's serial. Authenticity is cached per CRL for the duration of
// this call, since the same CRL may be in scope for more than one cert on
// the path.
func (s *search) consultCRLs(path []*cert.Cert, anchor trustanchor.TrustAnchor) error {
	if len(s.crls) == 0 {
		return nil
	}

	type status struct {
		authentic bool
		expired   bool
	}
	cache := make(map[*crl.CertRevocationList]status, len(s.crls))
	statusFor := func(l *crl.CertRevocationList) status {
		if st, ok := cache[l]; ok {
			return st
		}
		authentic, expired := s.crlAuthenticity(l, anchor, path)
		st := status{authentic: authentic, expired: expired}
		cache[l] = st
		return st
	}

	for i, c := range path {
		isCA := i != 0
		for _, l := range s.crls {
			if !l.InScope(c.IssuerRaw, isCA) {
				continue
			}
			st := statusFor(l)
			if !st.authentic {
				return wpkierror.UnknownRevocationStatus
			}
			if st.expired && !s.acceptExpiredCRL {
				return wpkierror.UnknownRevocationStatus
			}
			if _, revoked := l.Lookup(c.SerialNumber); revoked {
				return wpkierror.CertRevoked
			}
		}
	}
	return nil
}

// crlAuthenticity verifies l's signature against the anchor's SPKI or any
// intermediate SPKI on path, and separately reports whether l's nextUpdate
// has passed.
func (s *search) crlAuthenticity(l *crl.CertRevocationList, anchor trustanchor.TrustAnchor, path []*cert.Cert) (authentic, expired bool) {
	expired = l.HasNext && l.NextUpdate < s.now

	if signeddata.VerifySignedData(s.algs, anchor.SPKI, l.SignedData) == nil {
		return true, expired
	}
	for _, c := range path[1:] {
		if signeddata.VerifySignedData(s.algs, c.SPKIRaw, l.SignedData) == nil {
			return true, expired
		}
	}
	return false, expired
}

func spkiSeen(visited [][]byte, spki []byte) bool {
	for _, v := range visited {
		if bytes.Equal(v, spki) {
			return true
		}
	}
	return false
}

func recordBest(current, candidate wpkierror.Error) wpkierror.Error {
	if wpkierror.MoreSpecific(candidate, current) {
		return candidate
	}
	return current
}

func asError(err error) wpkierror.Error {
	if werr, ok := err.(wpkierror.Error); ok {
		return werr
	}
	return wpkierror.BadDER
}
