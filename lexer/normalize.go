package lexer

import (
	"github.com/pontaoski/letgo/types"
)

// Normalize drops whitespace and comments and turns line breaks that end a
// statement into EOS tokens. Runs of line breaks count once, and a break
// inside parentheses never ends a statement.
func Normalize(tokens []types.Token) []types.Token {
	out := make([]types.Token, 0, len(tokens))
	inRun := false

	for i, tok := range tokens {
		switch tok.Kind {
		case types.WHITESPACE, types.COMMENT:
			continue
		case types.LINEBREAK:
			if inRun {
				continue
			}
			inRun = true
			if tok.Depth == 0 && nextSignificant(tokens, i+1) != types.ELSE {
				out = append(out, types.Token{
					Kind:     types.EOS,
					Text:     tok.Text,
					Location: tok.Location,
				})
			}
			continue
		}

		inRun = false
		out = append(out, tok)
	}

	plog.Tracef("normalized %d tokens into %d", len(tokens), len(out))
	return out
}

func nextSignificant(tokens []types.Token, from int) types.TokenKind {
	for _, tok := range tokens[from:] {
		if tok.Kind.Significant() {
			return tok.Kind
		}
	}
	return types.EOF
}
