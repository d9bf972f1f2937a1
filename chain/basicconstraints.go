package chain

import (
	"github.com/japaric/webpki/der"
	"github.com/japaric/webpki/wpkierror"
)

// basicConstraints holds BasicConstraints ::= SEQUENCE { cA BOOLEAN DEFAULT
// FALSE, pathLenConstraint INTEGER OPTIONAL }. An absent extension decodes
// to {isCA: false, hasPathLen: false}, matching RFC 5280's default.
type basicConstraints struct {
	isCA       bool
	pathLen    int
	hasPathLen bool
}

func parseBasicConstraints(extValue []byte) (basicConstraints, error) {
	if extValue == nil {
		return basicConstraints{}, nil
	}
	var bc basicConstraints
	outer := der.NewReader(extValue)
	err := der.Nested(outer, der.Sequence, func(r *der.Reader) error {
		return parseBasicConstraintsBody(r, &bc)
	})
	// The outer SEQUENCE must be the entire extValue, which is exactly how
	// basicConstraints is encoded.
	if err == nil && !outer.AtEnd() {
		err = wpkierror.BadDER
	}
	if err != nil {
		if _, ok := err.(wpkierror.Error); ok {
			return basicConstraints{}, err
		}
		return basicConstraints{}, wpkierror.BadDER
	}
	return bc, nil
}

func parseBasicConstraintsBody(r *der.Reader, bc *basicConstraints) error {
	isCA, err := der.BooleanWithDefault(r, false)
	if err != nil {
		return err
	}
	bc.isCA = isCA
	if r.Peek(der.IntegerTag) {
		v, err := der.PositiveInteger(r)
		if err != nil {
			return err
		}
		n := 0
		for _, b := range v {
			n = n<<8 | int(b)
		}
		bc.pathLen = n
		bc.hasPathLen = true
	}
	return nil
}
