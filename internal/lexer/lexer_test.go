// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package lexer

import "testing"

func TestTokenizeBasic(t *testing.T) {
	toks := Tokenize(`sum = 0 : For i = 1 To 5`)
	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	if toks[0].Type != TokIdent || toks[0].Text != "sum" {
		t.Fatalf("got %+v, want ident sum", toks[0])
	}
	foundFor := false
	for _, tok := range toks {
		if tok.Type == TokKeyword && tok.Text == "For" {
			foundFor = true
		}
	}
	if !foundFor {
		t.Fatalf("expected keyword For in %+v", toks)
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	toks := Tokenize(`"say ""hi"""`)
	if toks[0].Type != TokString || toks[0].Text != `say "hi"` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLineContinuation(t *testing.T) {
	toks := Tokenize("a = 1 + _\n2")
	for _, tok := range toks {
		if tok.Type == TokNewline {
			t.Fatalf("unexpected newline token in continued line: %+v", toks)
		}
	}
}

func TestCommentSkipped(t *testing.T) {
	toks := Tokenize("x = 1 ' a comment\ny = 2")
	var texts []string
	for _, tok := range toks {
		if tok.Type != TokEOF {
			texts = append(texts, tok.Text)
		}
	}
	for _, txt := range texts {
		if txt == "a" || txt == "comment" {
			t.Fatalf("comment leaked into tokens: %v", texts)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []string{"123", "1.5", "1.5E10", "&HFF", "&O17", "100&"}
	for _, c := range cases {
		toks := Tokenize(c)
		if toks[0].Type != TokNumber {
			t.Fatalf("%q: got %+v, want number", c, toks[0])
		}
	}
}

func TestStabilityOfLexing(t *testing.T) {
	// spec.md §8: concatenating token texts with correct inter-token
	// spacing and re-tokenizing must yield the same token sequence.
	src := "If x = 1 Then y = 2"
	first := Tokenize(src)
	var rebuilt string
	for _, tok := range first {
		if tok.Type == TokEOF {
			break
		}
		rebuilt += tok.Text + " "
	}
	second := Tokenize(rebuilt)
	n := len(first)
	if len(second) < n {
		t.Fatalf("re-tokenized fewer tokens: %d < %d", len(second), n)
	}
	for i := 0; i < n; i++ {
		if first[i].Type != second[i].Type {
			t.Fatalf("token %d type mismatch: %v != %v", i, first[i].Type, second[i].Type)
		}
	}
}

func TestDateLiteral(t *testing.T) {
	toks := Tokenize("#1/1/2020#")
	if toks[0].Type != TokDate || toks[0].Text != "1/1/2020" {
		t.Fatalf("got %+v", toks[0])
	}
}
