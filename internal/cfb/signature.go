// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cfb

import (
	"fmt"

	"go.mozilla.org/pkcs7"
)

// ParseSignatureBlob decodes a best-effort Authenticode-style PKCS#7
// signature blob, the way real-world VBA projects occasionally store one in
// a sibling stream (e.g. "__SRP_0" / "_VBA_PROJECT_CUR"). This is read-only
// inspection, never a verification gate on ingest: signature presence and
// validity are surfaced as diagnostic metadata, per SPEC_FULL.md §2's
// adaptation of the teacher's security.go (Certificate parsing from a PE
// security data directory via go.mozilla.org/pkcs7).
func ParseSignatureBlob(raw []byte) (*pkcs7.PKCS7, error) {
	p, err := pkcs7.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("cfb: parse signature blob: %w", err)
	}
	return p, nil
}

// VerifySignature checks that the PKCS#7 blob's embedded signer
// certificate actually signed its content, without validating the
// certificate chain against any trust root (no-goal: cryptographic
// protection is a non-goal of this project; this is informational only).
func VerifySignature(p *pkcs7.PKCS7) error {
	if len(p.Certificates) == 0 {
		return fmt.Errorf("cfb: signature blob carries no certificates")
	}
	return p.Verify()
}
