// Package name implements RFC 6125 DNS-ID / IP-literal identity matching
// and RFC 5280 §4.2.1.10 name constraint enforcement. It walks a
// certificate's subject DN and subjectAltName the way the validator's
// depth-first search walks the chain: by borrowed byte slices and
// early-exit callbacks, never by building an owned list up front.
package name

import (
	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

// Tag identifies which GeneralName variant a value holds. Unsupported name
// forms keep only their tag, with the context-specific and constructed bits
// stripped, so that a name-constraint entry of an unsupported form can still
// be matched against a presented name of the same form (and rejected, per
// RFC 5280's "process the constraint or reject" rule).
type Tag byte

const (
	TagDNSName       Tag = 2
	TagDirectoryName Tag = 4
	TagIPAddress     Tag = 7

	TagOtherName                 Tag = 0
	TagRFC822Name                Tag = 1
	TagX400Address               Tag = 3
	TagEDIPartyName              Tag = 5
	TagUniformResourceIdentifier Tag = 6
	TagRegisteredID              Tag = 8
)

// GeneralName is one entry of a subjectAltName, or the certificate's
// subject DN reinterpreted as a DirectoryName. Value is the raw DER content
// bytes for recognized forms (DNSName, DirectoryName, IPAddress); for an
// Unsupported form it is nil, since the engine never interprets that form's
// content, only its presence.
type GeneralName struct {
	Tag   Tag
	Value []byte
}

func generalNameTagFor(rawTag der.Tag) (Tag, bool) {
	switch rawTag {
	case der.TagOtherName:
		return TagOtherName, true
	case der.TagRFC822Name:
		return TagRFC822Name, true
	case der.TagDNSName:
		return TagDNSName, true
	case der.TagX400Address:
		return TagX400Address, true
	case der.TagDirectoryName:
		return TagDirectoryName, true
	case der.TagEDIPartyName:
		return TagEDIPartyName, true
	case der.TagUniformResourceIdentifier:
		return TagUniformResourceIdentifier, true
	case der.TagIPAddress:
		return TagIPAddress, true
	case der.TagRegisteredID:
		return TagRegisteredID, true
	default:
		return 0, false
	}
}

func readGeneralName(r *der.Reader) (GeneralName, error) {
	rawTag, value, err := r.ReadTagAndGetValue()
	if err != nil {
		return GeneralName{}, wpkierror.BadDER
	}
	tag, ok := generalNameTagFor(rawTag)
	if !ok {
		return GeneralName{}, wpkierror.BadDER
	}
	switch tag {
	case TagDNSName, TagDirectoryName, TagIPAddress:
		return GeneralName{Tag: tag, Value: value}, nil
	default:
		return GeneralName{Tag: tag}, nil
	}
}

// EachName calls fn once for every name a validator must consider for
// identity or name-constraint purposes: every entry of subjectAltName (if
// sanValue is non-nil), in encoded order, followed by the subject DN (if
// subjectDN is non-nil) reinterpreted as a DirectoryName. It stops and returns fn's error
// as soon as fn returns stop=true or a non-nil error, mirroring the
// find_map short-circuit the reference implementation relies on to avoid
// decoding names nothing will ever inspect.
//
// This engine never treats a subject DN's commonName as a DNS-ID (CN-ID
// matching was a pre-RFC-6125 legacy fallback); subjectDN is surfaced only
// as a DirectoryName, which only the name-constraint checker — and then
// only to reject it, since directory-name constraints are not implemented
// — ever matches against.
func EachName(subjectDN, sanValue []byte, fn func(GeneralName) (stop bool, err error)) error {
	if sanValue != nil {
		// sanValue is the extnValue contents: GeneralNames ::= SEQUENCE OF
		// GeneralName, so the entries are read from inside that SEQUENCE.
		outer := der.NewReader(sanValue)
		names, err := outer.ExpectTagAndGetValue(der.Sequence)
		if err != nil || !outer.AtEnd() {
			return wpkierror.BadDER
		}
		r := der.NewReader(names)
		// An empty subjectAltName is invalid, but checking at_end before the
		// first read (rather than after) lets this report a meaningful error
		// instead of silently behaving as if the extension were absent.
		if r.AtEnd() {
			return wpkierror.MissingOrMalformedExtensions
		}
		for !r.AtEnd() {
			gn, err := readGeneralName(r)
			if err != nil {
				return err
			}
			stop, err := fn(gn)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
	if subjectDN != nil {
		stop, err := fn(GeneralName{Tag: TagDirectoryName, Value: subjectDN})
		if err != nil {
			return err
		}
		_ = stop
	}
	return nil
}
