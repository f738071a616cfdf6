package attack

import (
	"fmt"

	"github.com/nealharris/matasano"
	"github.com/nealharris/matasano/pkcs7"
)

// PaddingChecker is a CBC padding oracle: it reports whether a ciphertext
// decrypts to validly padded plaintext and reveals nothing else.
type PaddingChecker interface {
	CheckPadding(ct []byte) (bool, error)
}

// BreakPaddingOracle recovers the plaintext behind iv and ct using only a
// padding oracle, and returns it with the padding stripped.
//
// Each block is attacked on its own, as the second block of a two block
// query whose first block is a doctored copy of its real predecessor (the IV
// for the first block). Bytes are solved from last to first: to solve
// position p, the bytes after p are set so they decrypt to the pad value
// len-p, and all 256 values of byte p are tried. A value the oracle accepts
// means the block decrypts to the pad value there, which pins down the
// block's intermediate state and so its plaintext.
func BreakPaddingOracle(o PaddingChecker, iv, ct []byte) ([]byte, error) {
	blockSize := len(iv)
	if blockSize == 0 || blockSize > 0xff {
		return nil, fmt.Errorf("%w: iv of %d bytes", ErrInvalidCiphertext, blockSize)
	}
	if len(ct) == 0 || len(ct)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrInvalidCiphertext, len(ct), blockSize)
	}

	pt := make([]byte, 0, len(ct))
	prev := iv
	blocks := matasano.SplitIntoBlocks(ct, blockSize)
	for i, block := range blocks {
		ptBlock, err := paddingOracleAttackSingleBlock(o, prev, block)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		logger.Printf("recovered block %d of %d", i+1, len(blocks))
		pt = append(pt, ptBlock...)
		prev = block
	}

	stripped, err := pkcs7.Strip(pt, blockSize)
	if err != nil {
		return nil, fmt.Errorf("recovered plaintext: %w", err)
	}
	return stripped, nil
}

func paddingOracleAttackSingleBlock(o PaddingChecker, prev, block []byte) ([]byte, error) {
	blockSize := len(block)
	intermediate := make([]byte, blockSize)

	query := make([]byte, 2*blockSize)
	tamper := query[:blockSize]
	copy(query[blockSize:], block)

	for target := blockSize - 1; target >= 0; target-- {
		paddingByte := byte(blockSize - target)

		copy(tamper, prev)
		for i := target + 1; i < blockSize; i++ {
			tamper[i] = intermediate[i] ^ paddingByte
		}

		var valid []byte
		for guess := 0; guess < 256; guess++ {
			tamper[target] = byte(guess)
			ok, err := o.CheckPadding(query)
			if err != nil {
				return nil, err
			}
			if ok {
				valid = append(valid, byte(guess))
			}
		}

		guess, err := pickPaddingGuess(o, query, prev, target, paddingByte, valid)
		if err != nil {
			return nil, fmt.Errorf("byte %d: %w", target, err)
		}
		intermediate[target] = guess ^ paddingByte
	}

	return matasano.Xor(intermediate, prev)
}

// pickPaddingGuess chooses among the tamper values the oracle accepted for
// byte target. More than one only happens at the last byte, where a probe
// that makes the block end in 0x01 competes with one that completes longer
// padding already present, such as 0x02 0x02.
//
// A genuine 0x01 stays valid whatever the byte before it holds, so the
// candidates are re-checked with that byte flipped. If that still leaves a
// tie, the candidate whose plaintext byte differs from the pad value wins.
func pickPaddingGuess(o PaddingChecker, query, prev []byte, target int, paddingByte byte, valid []byte) (byte, error) {
	switch len(valid) {
	case 0:
		return 0, ErrNoCandidate
	case 1:
		return valid[0], nil
	case 2:
	default:
		return 0, fmt.Errorf("%w: %d tamper values accepted", ErrAmbiguousPadding, len(valid))
	}

	tamper := query[:len(prev)]
	if target > 0 {
		var confirmed []byte
		for _, guess := range valid {
			tamper[target] = guess
			tamper[target-1] ^= 0xff
			ok, err := o.CheckPadding(query)
			tamper[target-1] ^= 0xff
			if err != nil {
				return 0, err
			}
			if ok {
				confirmed = append(confirmed, guess)
			}
		}
		if len(confirmed) == 1 {
			return confirmed[0], nil
		}
	}

	var differ []byte
	for _, guess := range valid {
		if guess^paddingByte^prev[target] != paddingByte {
			differ = append(differ, guess)
		}
	}
	if len(differ) == 1 {
		return differ[0], nil
	}
	return 0, fmt.Errorf("%w: %d tamper values accepted", ErrAmbiguousPadding, len(valid))
}
